package models

// Kind тип локальной сущности
type Kind string

const (
	KindBook Kind = "book"
	KindList Kind = "list"
)
