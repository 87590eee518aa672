package gridstate

// PaginationController derives the page window from the server-reported
// total, the page size and the 1-based current page. Sort, search and
// page-size changes invalidate the old window and reset to page 1.
type PaginationController struct {
	currentPage  int
	pageSize     int
	totalRecords int
}

func NewPaginationController(pageSize int) *PaginationController {
	if pageSize < 1 {
		pageSize = 10
	}
	return &PaginationController{currentPage: 1, pageSize: pageSize}
}

func (p *PaginationController) CurrentPage() int { return p.currentPage }
func (p *PaginationController) PageSize() int    { return p.pageSize }
func (p *PaginationController) TotalRecords() int {
	return p.totalRecords
}

// SetTotalRecords records the server-reported count. If the current page
// fell past the end (rows deleted), it is pulled back to the last page.
func (p *PaginationController) SetTotalRecords(total int) {
	if total < 0 {
		total = 0
	}
	p.totalRecords = total
	if last := p.TotalPages(); last > 0 && p.currentPage > last {
		p.currentPage = last
	}
}

// SetPageSize changes the window size and resets to the first page.
func (p *PaginationController) SetPageSize(size int) {
	if size < 1 {
		return
	}
	p.pageSize = size
	p.currentPage = 1
}

// SetPage jumps to a page directly. Values below 1 clamp to the first
// page; values past the end clamp once the total is known.
func (p *PaginationController) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	if last := p.TotalPages(); last > 0 && page > last {
		page = last
	}
	p.currentPage = page
}

// Reset returns to the first page; called on sort or search changes.
func (p *PaginationController) Reset() {
	p.currentPage = 1
}

func (p *PaginationController) TotalPages() int {
	if p.totalRecords == 0 {
		return 0
	}
	return (p.totalRecords + p.pageSize - 1) / p.pageSize
}

func (p *PaginationController) IsFirstPage() bool {
	return p.currentPage == 1
}

func (p *PaginationController) IsLastPage() bool {
	return p.currentPage >= p.TotalPages()
}

// Next advances one page; a silent no-op on the last page.
func (p *PaginationController) Next() {
	if !p.IsLastPage() {
		p.currentPage++
	}
}

// Previous goes back one page; a silent no-op on the first page.
func (p *PaginationController) Previous() {
	if p.currentPage > 1 {
		p.currentPage--
	}
}

// RowNumberOffset is the row number preceding the first row of the page.
func (p *PaginationController) RowNumberOffset() int {
	return (p.currentPage - 1) * p.pageSize
}

// StartRecord is the 1-based number of the first displayed row, 0 when
// the result set is empty.
func (p *PaginationController) StartRecord() int {
	if p.totalRecords == 0 {
		return 0
	}
	return (p.currentPage-1)*p.pageSize + 1
}

// EndRecord is the 1-based number of the last displayed row.
func (p *PaginationController) EndRecord() int {
	end := p.currentPage * p.pageSize
	if end > p.totalRecords {
		return p.totalRecords
	}
	return end
}

// ShowPagination reports whether paging controls are worth rendering.
func (p *PaginationController) ShowPagination() bool {
	return p.totalRecords > p.pageSize
}
