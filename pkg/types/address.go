package types

// Address is a billing address block. It is stored as a JSON snapshot on
// the order alongside the shipping details, even when both are equal.
type Address struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Address  string `json:"address" validate:"required,min=5,max=300"`
	City     string `json:"city" validate:"required,max=80"`
	State    string `json:"state" validate:"required,max=80"`
	Pincode  string `json:"pincode" validate:"required,len=6,numeric"`
	Country  string `json:"country" validate:"required,max=80"`
}
