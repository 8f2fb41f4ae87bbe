package library

// Catalog is the ordered list of books held by the library.
type Catalog struct {
	books []Book
}

// NewCatalog copies books into a new catalog, preserving order.
func NewCatalog(books []Book) *Catalog {
	return &Catalog{books: append([]Book(nil), books...)}
}

func (c *Catalog) Add(b Book) { c.books = append(c.books, b) }

// Remove deletes the first book with title.
func (c *Catalog) Remove(title string) bool {
	for i := range c.books {
		if c.books[i].Title == title {
			c.books = append(c.books[:i], c.books[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the first book with title regardless of status.
func (c *Catalog) Find(title string) *Book {
	for i := range c.books {
		if c.books[i].Title == title {
			return &c.books[i]
		}
	}
	return nil
}

// FindAvailable returns the first Available book with title.
func (c *Catalog) FindAvailable(title string) *Book {
	for i := range c.books {
		if c.books[i].Title == title && c.books[i].Status == StatusAvailable {
			return &c.books[i]
		}
	}
	return nil
}

// Books returns a copy of every entry in catalog order.
func (c *Catalog) Books() []Book { return append([]Book(nil), c.books...) }

// Available returns a copy of the Available entries in catalog order.
func (c *Catalog) Available() []Book {
	var out []Book
	for _, b := range c.books {
		if b.Status == StatusAvailable {
			out = append(out, b)
		}
	}
	return out
}

func (c *Catalog) Len() int { return len(c.books) }
