package objc

import "fmt"

// Enum is an NS_ENUM (or NS_OPTIONS) declaration.
//
// Members hold the raw comma-separated tokens of the enum body, trimmed of
// surrounding whitespace. Explicit values are not split out: "Red = 1" stays
// "Red = 1". A trailing comma in the source produces a final empty member.
type Enum struct {
	FilePath    string   `json:"file_path"`
	Name        string   `json:"name"`
	StorageType string   `json:"enum_type"`
	Members     []string `json:"enums"`
}

// NewEnum creates an enum from already-split member tokens.
func NewEnum(path, name, storageType string, members []string) *Enum {
	if members == nil {
		members = []string{}
	}
	return &Enum{
		FilePath:    path,
		Name:        name,
		StorageType: storageType,
		Members:     members,
	}
}

func (e *Enum) String() string {
	return fmt.Sprintf("<Enum name=%s type=%s members=%v>", e.Name, e.StorageType, e.Members)
}
