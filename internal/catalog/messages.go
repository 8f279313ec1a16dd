package catalog

import (
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/upload"
)

const (
	MsgNotFound  = "Livre introuvable."
	MsgLoadError = "Erreur de chargement."
	MsgSaveError = "Erreur lors de l’enregistrement, merci de réessayer."
)

// Message turns an error from the service into the text shown to the user.
// Store and transport details stay in the logs.
func Message(err error) string {
	var (
		verr *domain.ValidationError
		uerr *upload.Error
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &uerr):
		return fmt.Sprintf("Échec de l’upload de %s", uerr.File)
	case errors.Is(err, domain.ErrNotFound):
		return MsgNotFound
	default:
		return MsgSaveError
	}
}
