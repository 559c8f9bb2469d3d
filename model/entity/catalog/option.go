package catalog

// Option input types. "color" renders as swatches, "select" as a dropdown;
// the resolver treats both the same.
const (
	OptionTypeColor  = "color"
	OptionTypeSelect = "select"
)

// Option represents catalog_product_option table: one selectable property of
// a product (e.g. color) with its ordered value list.
type Option struct {
	OptionID    uint   `gorm:"column:option_id;primaryKey;autoIncrement" json:"option_id,omitempty"`
	ProductID   uint   `gorm:"column:product_id;index;not null" json:"product_id,omitempty"`
	Code        string `gorm:"column:code;type:varchar(64);not null" json:"code"`
	DisplayName string `gorm:"column:display_name;type:varchar(255);not null" json:"display_name"`
	InputType   string `gorm:"column:input_type;type:varchar(16);not null;default:select" json:"input_type"`
	Position    int    `gorm:"column:position;not null;default:0" json:"position"`

	Values []OptionValue `gorm:"foreignKey:OptionID" json:"values"`
}

func (Option) TableName() string {
	return "catalog_product_option"
}

// OptionValue represents catalog_product_option_value table.
type OptionValue struct {
	ValueID  uint   `gorm:"column:value_id;primaryKey;autoIncrement" json:"value_id,omitempty"`
	OptionID uint   `gorm:"column:option_id;index;not null" json:"option_id,omitempty"`
	Value    string `gorm:"column:value;type:varchar(255);not null" json:"value"`
	Position int    `gorm:"column:position;not null;default:0" json:"position"`
}

func (OptionValue) TableName() string {
	return "catalog_product_option_value"
}

// ValueList returns the option's values in display order as plain strings.
func (o *Option) ValueList() []string {
	out := make([]string, len(o.Values))
	for i := range o.Values {
		out[i] = o.Values[i].Value
	}
	return out
}
