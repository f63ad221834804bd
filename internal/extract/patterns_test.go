package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
)

const rejectionLetter = `STAR HEALTH AND ALLIED INSURANCE CO. LTD.
Claim Rejection Letter

Claim No: CLM/2023/88412
Policy Number: P-161100-01
Patient: Mr. Rakesh Sharma
Hospital: Apollo Hospitals Enterprise Ltd, Chennai
Admission Date: 12/05/2023
Discharge Date: 15-05-2023
Total Amount: Rs. 1,45,000

Your claim is repudiated under code PED-001 and code pa-001. Refer PED-001 in the policy.`

func TestExtractPatterns_Fields(t *testing.T) {
	facts := ExtractPatterns(rejectionLetter)

	want := map[string]string{
		model.FieldClaimNumber:   "CLM/2023/88412",
		model.FieldPolicyNumber:  "P-161100-01",
		model.FieldAdmissionDate: "12/05/2023",
		model.FieldDischargeDate: "15-05-2023",
		model.FieldClaimAmount:   "1,45,000",
		model.FieldInsurerName:   "Star Health",
	}
	for field, v := range want {
		got, ok := facts.Get(field)
		require.True(t, ok, "field %s not set", field)
		assert.Equal(t, v, got, field)
	}

	hospital, ok := facts.Get(model.FieldHospitalName)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(hospital, "Apollo Hospitals"), hospital)
	assert.LessOrEqual(t, len(hospital), 50)

	assert.Equal(t, []string{"PED-001", "PA-001"}, facts.DenialCodes)

	_, ok = facts.Get(model.FieldMemberID)
	assert.False(t, ok)
}

func TestExtractPatterns_AdmissionDateOnly(t *testing.T) {
	facts := ExtractPatterns("Admission Date: 12/05/2023")
	got, ok := facts.Get(model.FieldAdmissionDate)
	require.True(t, ok)
	assert.Equal(t, "12/05/2023", got)
	assert.NotNil(t, facts.DenialCodes)
	assert.Empty(t, facts.DenialCodes)
}

func TestExtractPatterns_Empty(t *testing.T) {
	facts := ExtractPatterns("")
	assert.True(t, facts.IsEmpty())
	assert.Equal(t, []string{}, facts.DenialCodes)
}

func TestExtractPatterns_HospitalWithoutSuffix(t *testing.T) {
	facts := ExtractPatterns("treated at AIIMS.")
	got, ok := facts.Get(model.FieldHospitalName)
	require.True(t, ok)
	assert.Equal(t, "AIIMS", got)
}

func TestScanDenialCodes(t *testing.T) {
	codes := ScanDenialCodes("WP-2, exc-10 and WP-2 again; ABC-1 is not a code; XPED-1 neither")
	assert.Equal(t, []string{"WP-2", "EXC-10"}, codes)
}
