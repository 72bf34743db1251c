package graphapi

// Widget identifies the widget an input slot was converted from.
type Widget struct {
	Name *string `json:"name,omitempty"`
}

// Slot represents a connection point within a GraphNode.
type Slot struct {
	Name      string  `json:"name"`             // The name of the slot
	Type      string  `json:"type"`             // The type of the data the slot accepts
	Link      int     `json:"link,omitempty"`   // Index of the link for an input slot
	Links     *[]int  `json:"links,omitempty"`  // Array of links for output slots
	Widget    *Widget `json:"widget,omitempty"` // Set for inputs that are exported widgets
	SlotIndex *int    `json:"slot_index,omitempty"`
}
