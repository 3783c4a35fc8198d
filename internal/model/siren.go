package model

// Siren is an emergency warning device.
type Siren struct {
	ID          int64   `json:"id"`
	NumID       *int64  `json:"num_id"`
	NumPass     *string `json:"num_pass"`
	SirenTypeID *int64  `json:"siren_type_id"`
	Address     *string `json:"address"`
	Radio       *string `json:"radio"`
	Desk        *string `json:"desk"`
	ContactID   *int64  `json:"contact_id"`
	CompanyID   *int64  `json:"company_id"`
	Latitude    *string `json:"latitude"`
	Longitude   *string `json:"longitude"`
	Stage       *int64  `json:"stage"`
	Own         *string `json:"own"`
	Note        *string `json:"note"`
}

// SirenList is a siren row with the responsible contact's phones.
type SirenList struct {
	ID            int64   `json:"id"`
	SirenTypeName *string `json:"siren_type_name"`
	Address       *string `json:"address"`
	ContactName   *string `json:"contact_name"`
	Phones        []int64 `json:"phones"`
}

// SirenType is a siren model with its audible radius.
type SirenType struct {
	ID     int64   `json:"id"`
	Name   *string `json:"name"`
	Radius *int64  `json:"radius"`
	Note   *string `json:"note"`
}
