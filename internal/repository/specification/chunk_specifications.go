package specification

import "gorm.io/gorm"

// BySourcePath restricts chunks to a single source document
type BySourcePath struct {
	SourcePath string
}

func (s BySourcePath) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_path = ?", s.SourcePath)
}

// ByPageType restricts chunks by front matter page type
type ByPageType struct {
	PageType string
}

func (s ByPageType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("page_type = ?", s.PageType)
}

// Embedded keeps only chunks that carry a vector; pending chunks are not
// candidates for retrieval.
type Embedded struct{}

func (s Embedded) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NOT NULL")
}
