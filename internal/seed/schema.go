package seed

import "gopkg.in/yaml.v3"

// EntrySpec is one book in the seed file. Price is kept as text so
// "12,50" and "12.50" both parse the same way as the form field.
//
//	entries:
//	  - title: Atlas
//	    author: Anon
//	    price: "45"
//	    description: Demi-reliure cuir
//	    photos:
//	      - https://img.example/atlas-1.jpg
//
// photos may also use the legacy mapping (front, spine, back, inside).
type EntrySpec struct {
	Title       string    `yaml:"title"`
	Author      string    `yaml:"author"`
	Price       string    `yaml:"price"`
	Description string    `yaml:"description"`
	Photos      yaml.Node `yaml:"photos"`
}

// Catalog is the root structure of the seed file.
type Catalog struct {
	Entries []EntrySpec `yaml:"entries"`
}
