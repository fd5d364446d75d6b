package models

// Station bến xe. AddressID là 0 khi địa chỉ chưa resolve được.
type Station struct {
	ID        int64
	Name      string
	Slug      string
	Province  string
	AddressID int64
}

// Address địa chỉ đường phố; WardID là 0 cho đến khi resolve thành công.
// Unresolved addresses are retained, never dropped.
type Address struct {
	ID         int64
	StreetText string
	WardID     int64
}

// Route một tuyến xe giữa hai bến. Uniqueness key = (OriginID, DestinationID):
// hai dòng text khác nhau resolve về cùng cặp bến thì gộp làm một tuyến.
type Route struct {
	ID              int64
	Code            string
	OriginText      string
	DestinationText string
	OriginID        int64
	DestinationID   int64
	Source          string // "benxe" hoặc "nhaxe"
}

// Trip một chuyến xe cụ thể trên một tuyến
type Trip struct {
	ID            int64
	RouteID       int64
	VehicleID     int64
	DriverID      int64
	AttendantID   int64
	TripCode      string
	DepartureTime string
	ArrivalTime   string
	BaseFare      string
}

// Staff nhân sự (tài xế hoặc phụ xe đều tham chiếu về đây)
type Staff struct {
	ID     int64
	Name   string
	Age    int
	Gender string
	Phone  string
	Status string
}

// Vehicle loại xe
const (
	VehicleStandardVIP    = "STANDARD_BUS_VIP"
	VehicleStandardNormal = "STANDARD_BUS_NORMAL"
	VehicleLimousine      = "LIMOUSINE"
)

type Vehicle struct {
	ID          int64
	SeatMapID   int64
	Type        string
	TypeFactor  string
	PlateNumber string
	Brand       string
	Description string
	Status      string
}
