package models

import "time"

type FacilityType string

const (
	FacilityTypeHospital   FacilityType = "hospital"
	FacilityTypeClinic     FacilityType = "clinic"
	FacilityTypePharmacy   FacilityType = "pharmacy"
	FacilityTypeHealthPost FacilityType = "health_post"
	FacilityTypeWarehouse  FacilityType = "warehouse"
)

type Ownership string

const (
	OwnershipPublic     Ownership = "public"
	OwnershipPrivate    Ownership = "private"
	OwnershipFaithBased Ownership = "faith_based"
	OwnershipNGO        Ownership = "ngo"
)

type Facility struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Code         string       `json:"code"`
	FacilityType FacilityType `json:"facilityType"`
	Ownership    Ownership    `json:"ownership"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	LGA          string       `json:"lga"`
	Latitude     *float64     `json:"latitude"`
	Longitude    *float64     `json:"longitude"`
	ContactEmail string       `json:"contactEmail"`
	ContactPhone string       `json:"contactPhone"`
	IsActive     bool         `json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

type Medicine struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	GenericName string    `json:"genericName"`
	Category    string    `json:"category"`
	ATCCode     string    `json:"atcCode"`
	PackSize    string    `json:"packSize"`
	Unit        string    `json:"unit"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TransactionType string

const (
	TransactionTypeReceipt    TransactionType = "receipt"
	TransactionTypeIssue      TransactionType = "issue"
	TransactionTypeAdjustment TransactionType = "adjustment"
	TransactionTypeStockCount TransactionType = "stock_count"
)

type InventoryTransaction struct {
	ID                string          `json:"id"`
	FacilityID        string          `json:"facilityId"`
	MedicineID        string          `json:"medicineId"`
	TransactionType   TransactionType `json:"transactionType"`
	Quantity          float64         `json:"quantity"`
	BatchNumber       string          `json:"batchNumber"`
	ExpiryDate        *time.Time      `json:"expiryDate"`
	SourceDestination string          `json:"sourceDestination"`
	Reference         string          `json:"reference"`
	Notes             string          `json:"notes"`
	OccurredAt        time.Time       `json:"occurredAt"`
	RecordedAt        time.Time       `json:"recordedAt"`
	CreatedBy         *string         `json:"createdBy"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type StockSnapshot struct {
	ID          string    `json:"id"`
	FacilityID  string    `json:"facilityId"`
	MedicineID  string    `json:"medicineId"`
	StockOnHand float64   `json:"stockOnHand"`
	DaysOfStock int       `json:"daysOfStock"`
	DataSource  string    `json:"dataSource"`
	RecordedAt  time.Time `json:"recordedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Forecast struct {
	ID                      string    `json:"id"`
	FacilityID              string    `json:"facilityId"`
	MedicineID              string    `json:"medicineId"`
	ForecastDate            time.Time `json:"forecastDate"`
	PeriodStart             time.Time `json:"periodStart"`
	PeriodEnd               time.Time `json:"periodEnd"`
	PredictedDemand         float64   `json:"predictedDemand"`
	ConfidenceIntervalLower *float64  `json:"confidenceIntervalLower"`
	ConfidenceIntervalUpper *float64  `json:"confidenceIntervalUpper"`
	ModelVersion            string    `json:"modelVersion"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

type AlertType string

const (
	AlertTypeStockOut         AlertType = "stock_out"
	AlertTypeLowStock         AlertType = "low_stock"
	AlertTypeExpiry           AlertType = "expiry"
	AlertTypeForecastVariance AlertType = "forecast_variance"
)

type AlertStatus string

const (
	AlertStatusOpen         AlertStatus = "open"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

type Alert struct {
	ID          string      `json:"id"`
	FacilityID  string      `json:"facilityId"`
	MedicineID  string      `json:"medicineId"`
	AlertType   AlertType   `json:"alertType"`
	Status      AlertStatus `json:"status"`
	Message     string      `json:"message"`
	TriggeredAt time.Time   `json:"triggeredAt"`
	ResolvedAt  *time.Time  `json:"resolvedAt"`
	ResolvedBy  *string     `json:"resolvedBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type IntegrationAuthType string

const (
	IntegrationAuthBasic  IntegrationAuthType = "basic"
	IntegrationAuthToken  IntegrationAuthType = "token"
	IntegrationAuthOAuth2 IntegrationAuthType = "oauth2"
	IntegrationAuthNone   IntegrationAuthType = "none"
)

type IntegrationConfig struct {
	ID          string              `json:"id"`
	SystemName  string              `json:"systemName"`
	BaseURL     string              `json:"baseUrl"`
	AuthType    IntegrationAuthType `json:"authType"`
	Credentials map[string]any      `json:"credentials"`
	IsActive    bool                `json:"isActive"`
	LastSyncAt  *time.Time          `json:"lastSyncAt"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}
