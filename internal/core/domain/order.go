package domain

import "time"

// OrderStatus represents the lifecycle state of an order as reported by the
// backend. The console only displays it and derives the allowed actions.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCanceled  OrderStatus = "canceled"
	OrderCompleted OrderStatus = "completed"
)

// OrderStatuses lists the statuses offered by the orders status filter.
var OrderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderCompleted, OrderCanceled}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderCanceled, OrderCompleted:
		return true
	default:
		return false
	}
}

// Badge is the label and tone used to render the status.
func (s OrderStatus) Badge() Badge {
	switch s {
	case OrderPending:
		return Badge{Label: "Pending", Tone: ToneWarning}
	case OrderPaid:
		return Badge{Label: "Paid", Tone: ToneInfo}
	case OrderCompleted:
		return Badge{Label: "Completed", Tone: ToneSuccess}
	case OrderCanceled:
		return Badge{Label: "Canceled", Tone: ToneDanger}
	default:
		return Badge{Label: string(s), Tone: ToneWarning}
	}
}

// Order mirrors the backend order record.
type Order struct {
	ID              int64       `json:"id"`
	ClientID        int64       `json:"client_id"`
	WorkerID        *int64      `json:"worker_id,omitempty"`
	ServiceID       int64       `json:"service_id"`
	Status          OrderStatus `json:"status"`
	TotalAmount     float64     `json:"total_amount"`
	PaymentIntentID *string     `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       *time.Time  `json:"updated_at,omitempty"`
}

// OrderWithDetails is the list representation returned by GET /orders.
type OrderWithDetails struct {
	Order
	Client  User    `json:"client"`
	Worker  *User   `json:"worker,omitempty"`
	Service Service `json:"service"`
}

// OrderAction is something the current user may do with an order.
type OrderAction string

const (
	ActionAccept   OrderAction = "accept"
	ActionComplete OrderAction = "complete"
	ActionPay      OrderAction = "pay"
)

// Actions returns the actions available to viewer on o:
//   - a worker may accept a pending order nobody has taken yet;
//   - a worker may complete a paid order assigned to them;
//   - a client may pay a pending order.
func (o Order) Actions(viewer *User) []OrderAction {
	if viewer == nil {
		return nil
	}
	var out []OrderAction
	switch viewer.Role {
	case RoleWorker:
		if o.Status == OrderPending && o.WorkerID == nil {
			out = append(out, ActionAccept)
		}
		if o.Status == OrderPaid && o.WorkerID != nil && *o.WorkerID == viewer.ID {
			out = append(out, ActionComplete)
		}
	case RoleClient:
		if o.Status == OrderPending {
			out = append(out, ActionPay)
		}
	case RoleAdmin:
	}
	return out
}

// PaymentIntent is returned when a client starts paying an order.
type PaymentIntent struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}
