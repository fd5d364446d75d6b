package models

// Cấp hành chính trong hệ thống 3 tầng: tỉnh → quận/huyện → phường/xã.
const (
	LevelProvince = 1
	LevelDistrict = 2
	LevelWard     = 3
)

// Province đơn vị hành chính cấp tỉnh (không có parent)
type Province struct {
	ID             int64
	Code           string
	Name           string
	NormalizedName string
	CodeName       string
}

// District đơn vị hành chính cấp quận/huyện, parent là tỉnh
type District struct {
	ID             int64
	Code           string
	Name           string
	NormalizedName string
	CodeName       string
	ProvinceID     int64
}

// Ward đơn vị hành chính cấp phường/xã, parent là quận/huyện
type Ward struct {
	ID             int64
	Code           string
	Name           string
	NormalizedName string
	CodeName       string
	DistrictID     int64
}
