package extract

import "fmt"

const systemPrompt = `You are an expert at extracting structured information from Indian insurance claim rejection letters.
Extract the following fields from the document. Return ONLY a valid JSON object with these exact keys.
If a field is not found, use null. Be precise and extract exact values as they appear.

Required JSON format:
{
    "claim_number": "exact claim/reference number",
    "member_id": "member or insured ID",
    "policy_number": "policy/certificate number",
    "patient_name": "patient/insured name without titles like Mr/Mrs",
    "insurer_name": "insurance company name only (e.g., ICICI Lombard, Star Health, HDFC ERGO)",
    "hospital_name": "hospital name only without address",
    "provider": "treating doctor or provider if different from the hospital",
    "tpa_name": "TPA company name if mentioned (e.g., Medi Assist, Paramount)",
    "service_date": "date of service as found",
    "admission_date": "date of admission in DD/MM/YYYY or as found",
    "discharge_date": "date of discharge in DD/MM/YYYY or as found",
    "denial_date": "date of the rejection letter as found",
    "billed_amount": "billed amount as number without currency symbol",
    "allowed_amount": "allowed or approved amount as number without currency symbol",
    "denied_amount": "denied or deducted amount as number without currency symbol",
    "claim_amount": "claimed amount as number without currency symbol",
    "denial_reason": "brief reason for rejection/denial",
    "denial_codes": ["array of denial codes like PED-001, PA-001"]
}

IMPORTANT:
- Extract ONLY the actual values, not labels or surrounding text
- For hospital_name, extract just the hospital name (e.g., "Max Super Speciality Hospital, Saket")
- For insurer_name, extract just the company name (e.g., "ICICI Lombard")
- For patient_name, remove titles like Mr., Mrs., Shri, Smt.
- Return valid JSON only, no additional text`

func userPrompt(text string) string {
	return fmt.Sprintf(`Extract information from this insurance claim document:

---
%s
---

Return ONLY the JSON object with extracted values.`, text)
}
