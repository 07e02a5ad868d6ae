package domain

import "strings"

// BusinessInfo is the flat record of business facts used to fill template
// placeholders. Fields are plain text; a blank field means "do not
// substitute", never "blank the template copy out".
type BusinessInfo struct {
	Name        string   `json:"business_name,omitempty"`
	Address     string   `json:"business_address,omitempty"`
	Phone       string   `json:"business_phone,omitempty"`
	Hours       string   `json:"business_hours,omitempty"`
	Slogan      string   `json:"business_slogan,omitempty"`
	Description string   `json:"business_description,omitempty"`
	Services    []string `json:"business_services,omitempty"`
	Industry    string   `json:"business_industry,omitempty"`
}

// IsZero reports whether no field carries a value.
func (b BusinessInfo) IsZero() bool {
	return strings.TrimSpace(b.Name) == "" &&
		strings.TrimSpace(b.Address) == "" &&
		strings.TrimSpace(b.Phone) == "" &&
		strings.TrimSpace(b.Hours) == "" &&
		strings.TrimSpace(b.Slogan) == "" &&
		strings.TrimSpace(b.Description) == "" &&
		len(b.Services) == 0 &&
		strings.TrimSpace(b.Industry) == ""
}

// Clone copies the record so stored state never shares slices with callers.
func (b BusinessInfo) Clone() BusinessInfo {
	copied := b
	if len(b.Services) > 0 {
		copied.Services = append([]string(nil), b.Services...)
	}
	return copied
}
