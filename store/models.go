package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/mercato-io/mercato/auth"
	"github.com/uptrace/bun"
)

// OrderStatus is the order's lifecycle state
type OrderStatus = string

const (
	// OrderStatusPending is a placed but unpaid order
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaid is a paid order awaiting shipment
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusShipped is an order in transit
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered is a completed order
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled is a cancelled order
	OrderStatusCancelled OrderStatus = "cancelled"
)

// User is the user model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           auth.UserRole `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName      string        `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName       string        `bun:"last_name,notnull" json:"last_name,omitempty"`
	Username       string        `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string        `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone          string        `bun:"phone_number" json:"phone_number,omitempty"`
	Address        string        `bun:"address" json:"address,omitempty"`
	PasswordHash   string        `bun:"password_hash" json:"-"`
	Enabled        bool          `bun:"enabled,default:true" json:"enabled,omitempty"`
	LoginAttempts  int           `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time    `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time    `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time    `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AsRecord maps the stored user into the shape credential verification uses.
func (u *User) AsRecord() *auth.UserRecord {
	if u == nil {
		return nil
	}
	return &auth.UserRecord{
		ID:             u.ID.String(),
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		PasswordHash:   u.PasswordHash,
		Enabled:        u.Enabled,
		LoginAttempts:  u.LoginAttempts,
		LoginAttemptAt: u.LoginAttemptAt,
	}
}

// Product is the catalog item model
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Price         float64    `bun:"price,notnull" json:"price"`
	Category      string     `bun:"category" json:"category,omitempty"`
	Brand         string     `bun:"brand" json:"brand,omitempty"`
	Color         string     `bun:"color" json:"color,omitempty"`
	Size          string     `bun:"size" json:"size,omitempty"`
	Stock         int        `bun:"stock" json:"stock"`
	ImageURL      string     `bun:"image_url" json:"image_url,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Order is the order model. Reference is the short human-facing handle
// customers use; the UUID stays internal.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:ord"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Reference     string       `bun:"reference,notnull,unique" json:"reference,omitempty"`
	Status        OrderStatus  `bun:"status,notnull" json:"status,omitempty"`
	TotalAmount   float64      `bun:"total_amount,notnull" json:"total_amount"`
	CustomerID    uuid.UUID    `bun:"customer_id,notnull,type:uuid" json:"customer_id,omitempty"`
	Customer      *User        `bun:"rel:belongs-to,join:customer_id=id" json:"customer,omitempty"`
	Items         []*OrderItem `bun:"rel:has-many,join:id=order_id" json:"items,omitempty"`
	OrderedAt     *time.Time   `bun:"ordered_at,nullzero,default:current_timestamp" json:"ordered_at,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time   `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// OrderItem is a single line of an order
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:itm"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OrderID       uuid.UUID `bun:"order_id,notnull,type:uuid" json:"order_id,omitempty"`
	ProductID     uuid.UUID `bun:"product_id,notnull,type:uuid" json:"product_id,omitempty"`
	Product       *Product  `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
	Quantity      int       `bun:"quantity,notnull" json:"quantity"`
	UnitPrice     float64   `bun:"unit_price,notnull" json:"unit_price"`
}

// Review is a customer review attached to a product
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:rev"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Rating        int        `bun:"rating,notnull" json:"rating"`
	Comment       string     `bun:"comment" json:"comment,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	ProductID     uuid.UUID  `bun:"product_id,notnull,type:uuid" json:"product_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
