package model

import "encoding/json"

// ClaimFacts is the fixed-schema record of claim-identifying fields
// extracted from a denial document. Absent values are nil, never missing keys.
type ClaimFacts struct {
	ClaimNumber   *string  `json:"claim_number"`
	MemberID      *string  `json:"member_id"`
	PolicyNumber  *string  `json:"policy_number"`
	ServiceDate   *string  `json:"service_date"`
	AdmissionDate *string  `json:"admission_date"`
	DischargeDate *string  `json:"discharge_date"`
	DenialDate    *string  `json:"denial_date"`
	Provider      *string  `json:"provider"`
	HospitalName  *string  `json:"hospital_name"`
	InsurerName   *string  `json:"insurer_name"`
	TPAName       *string  `json:"tpa_name"`
	PatientName   *string  `json:"patient_name"`
	BilledAmount  *string  `json:"billed_amount"`
	AllowedAmount *string  `json:"allowed_amount"`
	DeniedAmount  *string  `json:"denied_amount"`
	ClaimAmount   *string  `json:"claim_amount"`
	DenialCodes   []string `json:"denial_codes"`
	DenialReason  *string  `json:"denial_reason"`
}

// Fact field names, in schema order. denial_codes is the only list-valued key.
const (
	FieldClaimNumber   = "claim_number"
	FieldMemberID      = "member_id"
	FieldPolicyNumber  = "policy_number"
	FieldServiceDate   = "service_date"
	FieldAdmissionDate = "admission_date"
	FieldDischargeDate = "discharge_date"
	FieldDenialDate    = "denial_date"
	FieldProvider      = "provider"
	FieldHospitalName  = "hospital_name"
	FieldInsurerName   = "insurer_name"
	FieldTPAName       = "tpa_name"
	FieldPatientName   = "patient_name"
	FieldBilledAmount  = "billed_amount"
	FieldAllowedAmount = "allowed_amount"
	FieldDeniedAmount  = "denied_amount"
	FieldClaimAmount   = "claim_amount"
	FieldDenialCodes   = "denial_codes"
	FieldDenialReason  = "denial_reason"
)

// FactFields lists every string-valued key of the schema in order.
var FactFields = []string{
	FieldClaimNumber, FieldMemberID, FieldPolicyNumber, FieldServiceDate,
	FieldAdmissionDate, FieldDischargeDate, FieldDenialDate, FieldProvider,
	FieldHospitalName, FieldInsurerName, FieldTPAName, FieldPatientName,
	FieldBilledAmount, FieldAllowedAmount, FieldDeniedAmount, FieldClaimAmount,
	FieldDenialReason,
}

// NewClaimFacts returns the all-null record with an empty code list.
func NewClaimFacts() ClaimFacts {
	return ClaimFacts{DenialCodes: []string{}}
}

func (f *ClaimFacts) slot(name string) **string {
	switch name {
	case FieldClaimNumber:
		return &f.ClaimNumber
	case FieldMemberID:
		return &f.MemberID
	case FieldPolicyNumber:
		return &f.PolicyNumber
	case FieldServiceDate:
		return &f.ServiceDate
	case FieldAdmissionDate:
		return &f.AdmissionDate
	case FieldDischargeDate:
		return &f.DischargeDate
	case FieldDenialDate:
		return &f.DenialDate
	case FieldProvider:
		return &f.Provider
	case FieldHospitalName:
		return &f.HospitalName
	case FieldInsurerName:
		return &f.InsurerName
	case FieldTPAName:
		return &f.TPAName
	case FieldPatientName:
		return &f.PatientName
	case FieldBilledAmount:
		return &f.BilledAmount
	case FieldAllowedAmount:
		return &f.AllowedAmount
	case FieldDeniedAmount:
		return &f.DeniedAmount
	case FieldClaimAmount:
		return &f.ClaimAmount
	case FieldDenialReason:
		return &f.DenialReason
	}
	return nil
}

// Get returns the value of a string field and whether it is set.
func (f *ClaimFacts) Get(name string) (string, bool) {
	p := f.slot(name)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// Set assigns a string field. It reports false for names outside the schema.
func (f *ClaimFacts) Set(name, value string) bool {
	p := f.slot(name)
	if p == nil {
		return false
	}
	v := value
	*p = &v
	return true
}

// Value returns the field value or fallback when unset.
func (f *ClaimFacts) Value(name, fallback string) string {
	if v, ok := f.Get(name); ok && v != "" {
		return v
	}
	return fallback
}

// Filled returns the names of the string fields that hold a value.
func (f *ClaimFacts) Filled() []string {
	var names []string
	for _, name := range FactFields {
		if v, ok := f.Get(name); ok && v != "" {
			names = append(names, name)
		}
	}
	return names
}

// IsEmpty reports whether no field and no denial code is set.
func (f *ClaimFacts) IsEmpty() bool {
	return len(f.Filled()) == 0 && len(f.DenialCodes) == 0
}

// MarshalJSON keeps denial_codes an array even on a zero value.
func (f ClaimFacts) MarshalJSON() ([]byte, error) {
	type plain ClaimFacts
	if f.DenialCodes == nil {
		f.DenialCodes = []string{}
	}
	return json.Marshal(plain(f))
}

// UnmarshalJSON restores an empty code list when the key is null.
func (f *ClaimFacts) UnmarshalJSON(data []byte) error {
	type plain ClaimFacts
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = ClaimFacts(p)
	if f.DenialCodes == nil {
		f.DenialCodes = []string{}
	}
	return nil
}
