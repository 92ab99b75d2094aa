package models

// List представляет пользовательский список книг
type List struct {
	Sort  *int32   `json:"sort,omitempty"` // Sort позиция списка
	Name  string   `json:"name"`           // Name название списка
	Books []string `json:"books"`          // Books record names книг в порядке списка
}

// List property names as recorded in the local transaction history
const (
	ListPropName  = "name"
	ListPropSort  = "sort"
	ListPropBooks = "books"
)
