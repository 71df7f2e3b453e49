// Package status projects backend order statuses into user-facing tags.
// It performs no transition validation and no writes; the backend drives
// the lifecycle.
package status

import "github.com/cellex-webapp/cellex-storefront/pkg/models"

// Tag is the display form of an order status.
type Tag struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

var known = map[string]Tag{
	models.OrderPending:   {Status: models.OrderPending, Label: "Awaiting confirmation", Color: "gold"},
	models.OrderConfirmed: {Status: models.OrderConfirmed, Label: "Confirmed", Color: "blue"},
	models.OrderShipping:  {Status: models.OrderShipping, Label: "Out for delivery", Color: "cyan"},
	models.OrderDelivered: {Status: models.OrderDelivered, Label: "Delivered", Color: "green"},
	models.OrderCancelled: {Status: models.OrderCancelled, Label: "Cancelled", Color: "red"},
}

// Project maps a status string to its tag. Statuses the gateway does not
// know render verbatim with a neutral color, so new backend statuses show
// up without a deploy here.
func Project(status string) Tag {
	if tag, ok := known[status]; ok {
		return tag
	}
	return Tag{Status: status, Label: status, Color: "default"}
}
