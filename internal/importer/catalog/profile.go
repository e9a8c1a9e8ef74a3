package catalog

// Profile describes the column headers of a catalog export. Barcode,
// quantity, category and description are optional; a profile matches
// when its name and price columns are both present.
type Profile struct {
	Name string

	NameCol     string
	PriceCol    string
	BarcodeCol  string
	QuantityCol string
	CategoryCol string
	DescCol     string
}

// requiredCols returns the columns that must be present for this
// profile to match.
func (p Profile) requiredCols() []string {
	return []string{p.NameCol, p.PriceCol}
}

// profiles is the ordered list of catalog layouts to try during
// auto-detection.
var profiles = []Profile{
	{
		Name:        "english",
		NameCol:     "name",
		PriceCol:    "price",
		BarcodeCol:  "barcode",
		QuantityCol: "quantity",
		CategoryCol: "category",
		DescCol:     "description",
	},
	{
		Name:        "arabic",
		NameCol:     "الاسم",
		PriceCol:    "السعر",
		BarcodeCol:  "الباركود",
		QuantityCol: "الكمية",
		CategoryCol: "التصنيف",
		DescCol:     "الوصف",
	},
}
