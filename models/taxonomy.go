package models

// Category groups articles and products many-to-one.
type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (c Category) EntityID() uint { return c.ID }

// Tag labels articles many-to-many.
type Tag struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (t Tag) EntityID() uint { return t.ID }
