package model

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Normalize fills defaults and clamps the page size.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Bounds returns the [start, end) slice bounds of the page over total items.
func (p Pagination) Bounds(total int) (int, int) {
	p = p.Normalize()
	start := (p.Page - 1) * p.PageSize
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// EditingBackup is the recovery slot written before a row enters editing.
type EditingBackup struct {
	RowIndex int    `json:"rowIndex"`
	Data     Record `json:"data"`
}

// UploadStatus is the outcome of the last import.
type UploadStatus string

const (
	UploadNone    UploadStatus = ""
	UploadSuccess UploadStatus = "success"
	UploadError   UploadStatus = "error"
)
