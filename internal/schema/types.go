package schema

import "slices"

type FieldType string

const (
	FieldText   FieldType = "TEXT"
	FieldNumber FieldType = "NUMBER"
	FieldChoice FieldType = "CHOICE"
)

type FieldDef struct {
	APIName       string
	Title         string
	Type          FieldType
	StorageColumn *string
	Choices       []string // CHOICE only
	Sortable      bool
}

// IsNumeric returns true if values of the field are unsigned integers.
func (f *FieldDef) IsNumeric() bool {
	return f.Type == FieldNumber
}

// IsText returns true if the field accepts pattern operators (like, regex, similar).
func (f *FieldDef) IsText() bool {
	return f.Type == FieldText
}

// HasChoice reports whether v is one of the field's allowed choices.
func (f *FieldDef) HasChoice(v string) bool {
	return slices.Contains(f.Choices, v)
}

// Column returns the physical name of the field: its storage column if set, otherwise the API name.
func (f *FieldDef) Column() string {
	if f.StorageColumn != nil {
		return *f.StorageColumn
	}
	return f.APIName
}

type ObjectDef struct {
	APIName         string
	Title           string
	PluralTitle     string
	Fields          []FieldDef
	FieldsByAPIName map[string]*FieldDef
}

// NewObject builds an ObjectDef and indexes its fields by API name.
func NewObject(apiName, title, pluralTitle string, fields ...FieldDef) *ObjectDef {
	obj := &ObjectDef{
		APIName:         apiName,
		Title:           title,
		PluralTitle:     pluralTitle,
		Fields:          fields,
		FieldsByAPIName: make(map[string]*FieldDef, len(fields)),
	}
	for i := range obj.Fields {
		obj.FieldsByAPIName[obj.Fields[i].APIName] = &obj.Fields[i]
	}
	return obj
}

// Aliases returns the API name → storage column mapping for fields whose column differs.
func (o *ObjectDef) Aliases() map[string]string {
	aliases := make(map[string]string)
	for _, f := range o.Fields {
		if col := f.Column(); col != f.APIName {
			aliases[f.APIName] = col
		}
	}
	return aliases
}

// Wallets is the built-in wallets object.
func Wallets() *ObjectDef {
	return NewObject("wallets", "Wallet", "Wallets",
		FieldDef{APIName: "wallet_id", Title: "Wallet ID", Type: FieldNumber, StorageColumn: new("id"), Sortable: true},
		FieldDef{APIName: "wallet_type", Title: "Wallet Type", Type: FieldChoice, StorageColumn: new("type"), Choices: []string{"public", "private"}, Sortable: true},
		FieldDef{APIName: "wallet_name", Title: "Wallet Name", Type: FieldText},
	)
}
