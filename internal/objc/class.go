package objc

import "fmt"

// Class is an Objective-C class recovered from an @interface ... @end block.
type Class struct {
	FilePath       string     `json:"file_path"`
	Name           string     `json:"name"`
	SuperclassName string     `json:"superclass_name"`
	Protocols      []string   `json:"protocols,omitempty"`
	Properties     []Property `json:"properties"`
}

// NewClass creates a class with no properties.
func NewClass(path, name, superclassName string) *Class {
	return &Class{
		FilePath:       path,
		Name:           name,
		SuperclassName: superclassName,
		Properties:     []Property{},
	}
}

// AddProperty appends p in declaration order. Duplicate names are kept.
func (c *Class) AddProperty(p Property) {
	c.Properties = append(c.Properties, p)
}

// PropertyByName returns the first declared property with the given name.
// Later duplicates stay in Properties but are never returned here.
func (c *Class) PropertyByName(name string) (Property, bool) {
	for _, p := range c.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

func (c *Class) String() string {
	return fmt.Sprintf("<Class name=%s superclass=%s properties=%d>", c.Name, c.SuperclassName, len(c.Properties))
}
