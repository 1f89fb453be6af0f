package basicseo

import "time"

// Entry is a content row as stored: Body is markdown, rendered to HTML when
// the entry is handed to the SEO layer.
type Entry struct {
	ID          int64
	Type        string
	Slug        string
	Title       string
	Body        string
	Status      string
	ParentID    int64
	ThumbnailID int64
	// File is the stored upload name of an attachment.
	File     string
	Modified time.Time
}

// Entry statuses.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
	// StatusInherit marks attachments, which follow their parent.
	StatusInherit = "inherit"
)

// PostTypeDef registers a content type.
type PostTypeDef struct {
	Name         string `yaml:"name"`
	Label        string `yaml:"label"`
	Public       bool   `yaml:"public"`
	Hierarchical bool   `yaml:"hierarchical"`
	// Base is the permalink prefix; empty serves entries at the root.
	Base string `yaml:"base"`
}

// TaxonomyDef registers a taxonomy.
type TaxonomyDef struct {
	Name         string `yaml:"name"`
	Label        string `yaml:"label"`
	Public       bool   `yaml:"public"`
	Hierarchical bool   `yaml:"hierarchical"`
	Base         string `yaml:"base"`
}

// DefaultPostTypes returns the built-in content types.
func DefaultPostTypes() []PostTypeDef {
	return []PostTypeDef{
		{Name: "post", Label: "Posts", Public: true},
		{Name: "page", Label: "Pages", Public: true, Hierarchical: true},
		{Name: "product", Label: "Products", Public: true, Base: "product"},
		{Name: "attachment", Label: "Media", Public: true, Base: "attachment"},
	}
}

// DefaultTaxonomies returns the built-in taxonomies.
func DefaultTaxonomies() []TaxonomyDef {
	return []TaxonomyDef{
		{Name: "category", Label: "Categories", Public: true, Hierarchical: true, Base: "category"},
		{Name: "post_tag", Label: "Tags", Public: true, Base: "tag"},
		{Name: "product_cat", Label: "Product categories", Public: true, Hierarchical: true, Base: "product-category"},
	}
}
