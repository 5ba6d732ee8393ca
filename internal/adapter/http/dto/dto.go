package dto

// ---- Merchant auth ----

// RegisterMerchantRequest is the request body for merchant registration.
type RegisterMerchantRequest struct {
	Email     string  `json:"email" binding:"required,email,max=100"`
	Password  string  `json:"password" binding:"required,min=8,max=128"`
	StoreName string  `json:"store_name" binding:"required,min=1,max=100"`
	OwnerName string  `json:"owner_name" binding:"required,min=1,max=100"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Address   *string `json:"address,omitempty" binding:"omitempty,max=255"`
}

// LoginRequest is the request body for merchant login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterMerchantResponse is the response body for successful registration.
type RegisterMerchantResponse struct {
	MerchantID string `json:"merchant_id"`
	Email      string `json:"email"`
	StoreName  string `json:"store_name"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// ---- Cards ----

// RegisterCardRequest is the request body for issuing a new card.
type RegisterCardRequest struct {
	CardUID        string  `json:"card_uid" binding:"required,card_uid"`
	PIN            string  `json:"pin" binding:"required,pin"`
	OwnerName      string  `json:"owner_name,omitempty" binding:"omitempty,max=100"`
	Phone          *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	InitialBalance int64   `json:"initial_balance,omitempty" binding:"omitempty,gte=0"`
}

// VerifyCardRequest is the request body for the read-only card check.
type VerifyCardRequest struct {
	CardUID string `json:"card_uid" binding:"required,card_uid"`
	PIN     string `json:"pin" binding:"required,pin"`
}

// CardResponse is the card projection returned to terminals and dashboards.
type CardResponse struct {
	CardUID   string `json:"card_uid"`
	OwnerName string `json:"owner_name"`
	Balance   int64  `json:"balance"`
	Active    bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// TopUpRequest is the request body for a balance top-up.
type TopUpRequest struct {
	CardUID string `json:"card_uid" binding:"required,card_uid"`
	Amount  int64  `json:"amount" binding:"required,gt=0"`
	PIN     string `json:"pin,omitempty" binding:"omitempty,pin"`
}

// TopUpResponse reports the balance movement of a top-up.
type TopUpResponse struct {
	CardUID    string `json:"card_uid"`
	OwnerName  string `json:"owner_name"`
	Amount     int64  `json:"amount"`
	OldBalance int64  `json:"old_balance"`
	NewBalance int64  `json:"new_balance"`
}

// SetCardActiveRequest toggles a card's active flag.
type SetCardActiveRequest struct {
	Active *bool `json:"is_active" binding:"required"`
}

// ---- Payment ----

// PaymentItemRequest is one cart line scanned at the terminal.
type PaymentItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// PaymentRequest is the request body for payment processing.
type PaymentRequest struct {
	CardUID     string               `json:"card_uid" binding:"required,card_uid"`
	PIN         string               `json:"pin" binding:"required,pin"`
	ReferenceID string               `json:"reference_id,omitempty" binding:"omitempty,max=100"`
	Items       []PaymentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// PaymentResponse is the response body for a completed payment.
type PaymentResponse struct {
	TransactionID string `json:"transaction_id"`
	CardUID       string `json:"card_uid"`
	Amount        int64  `json:"amount"`
	OldBalance    int64  `json:"old_balance"`
	NewBalance    int64  `json:"new_balance"`
	CreatedAt     string `json:"created_at"`
}

// ---- Catalog ----

// ProductRequest is the request body for product create/update.
type ProductRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Price    int64  `json:"price" binding:"required,gt=0"`
	Stock    int64  `json:"stock" binding:"gte=0"`
	Category string `json:"category,omitempty" binding:"omitempty,max=50"`
}

// RestockRequest adds stock to an existing product.
type RestockRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// ProductResponse is the product projection for API responses.
type ProductResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Stock     int64  `json:"stock"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ---- Reporting ----

// TransactionItemResponse is one ledger line item.
type TransactionItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Subtotal    int64  `json:"subtotal"`
}

// TransactionResponse is one ledger entry with its items.
type TransactionResponse struct {
	ID        string                    `json:"id"`
	CardUID   string                    `json:"card_uid"`
	Amount    int64                     `json:"amount"`
	Status    string                    `json:"status"`
	CreatedAt string                    `json:"created_at"`
	Items     []TransactionItemResponse `json:"items"`
}

// TransactionListResponse wraps a paginated ledger page.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// StatsResponse is the response for dashboard statistics.
type StatsResponse struct {
	TotalTransactions int64 `json:"total_transactions"`
	TotalRevenue      int64 `json:"total_revenue"`
	ItemsSold         int64 `json:"items_sold"`
}
