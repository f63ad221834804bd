package pipeline

import (
	"fmt"
	"strings"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/knowledge"
)

// Stages returns the six stage definitions. Role backstories quote the
// regulations and template texts from corpus.
func Stages(corpus knowledge.Corpus) []Stage {
	return []Stage{
		{
			ID: DocumentAnalysis,
			Role: Role{
				Title: "Insurance Document Analyst",
				Goal:  "Extract and structure all relevant information from insurance claim documents",
				Backstory: `You are an expert at reading and interpreting Indian insurance documents
including claim rejection letters, pre-authorization denials, cashless claim rejections,
and health insurance policies. You have 15 years of experience in medical billing at
top Indian insurers like Star Health, ICICI Lombard, HDFC ERGO, and government schemes
like PMJAY. You can quickly identify key information like claim numbers, rejection codes,
policy numbers, TPA details, and denial reasons as per IRDAI guidelines. You are
meticulous and never miss important details.`,
			},
			Inputs: InputDocument,
			Expected: `A structured report containing all extracted claim information,
denial details, and relevant deadlines. Format as a clear document with sections.`,
			Prompt: documentAnalysisPrompt,
		},
		{
			ID: PolicyAnalysis,
			Role: Role{
				Title: "Insurance Policy Expert",
				Goal:  "Analyze insurance policies to determine coverage and identify policy violations",
				Backstory: `You are a seasoned insurance policy analyst with deep knowledge
of Indian health insurance regulations under IRDAI (Insurance Regulatory and
Development Authority of India). You understand policy wordings, exclusions,
coverage limits, waiting periods, sub-limits, and policyholder rights under
the Insurance Act 1938 and IRDAI Health Insurance Regulations 2016. You can
quickly determine if a claim should be covered and identify when insurers
incorrectly apply policy terms or violate IRDAI guidelines.`,
			},
			Reads:  []StageID{DocumentAnalysis},
			Inputs: InputPolicy,
			Limits: Limits{Document: DocumentCap, Policy: PolicyCap},
			Expected: `A coverage analysis report including:
- Assessment of whether service should be covered
- Potential exclusions to watch for
- Prior authorization considerations
- Any suspected policy violations
- Recommendations for appeal arguments`,
			Prompt: policyAnalysisPrompt,
		},
		{
			ID: DenialReview,
			Role: Role{
				Title: "Claims Denial Reviewer",
				Goal:  "Analyze denial reasons and determine if the denial is valid or can be appealed",
				Backstory: `You are a claims denial specialist who has reviewed thousands of
insurance claim denials. You know every denial code, what they mean, and most
importantly, when insurers use them incorrectly. You can spot procedural errors,
factual mistakes, and policy misapplications that make denials invalid.` +
					excerpt("You are familiar with insurance regulations:", corpus.RegulationsHead(), corpus.Regulations),
			},
			Reads:  []StageID{DocumentAnalysis, PolicyAnalysis},
			Inputs: InputDenialReport,
			Limits: Limits{Document: DocumentCap, Policy: PolicyCap},
			Expected: `A denial validity assessment including:
- Overall assessment (Valid/Likely Invalid/Uncertain)
- Confidence level
- List of specific issues found
- Recommended grounds for appeal
- Estimated success probability (Low/Medium/High)`,
			Prompt: denialReviewPrompt,
		},
		{
			ID: AppealStrategy,
			Role: Role{
				Title: "Insurance Appeal Strategist",
				Goal:  "Develop the strongest possible appeal strategy based on IRDAI regulations and precedents",
				Backstory: `You are a legal researcher specializing in Indian insurance appeals.
You know IRDAI regulations, Insurance Act 1938, Consumer Protection Act 2019,
IRDAI Health Insurance Regulations, and Insurance Ombudsman Rules. You understand
the grievance redressal mechanisms including IGMS portal, Insurance Ombudsman,
and Consumer Forum. You can identify the strongest legal grounds for an appeal
that insurance companies cannot easily dismiss.` +
					excerpt("Key regulations you reference:", corpus.Regulations, corpus.Regulations),
			},
			Reads:  []StageID{DocumentAnalysis, PolicyAnalysis, DenialReview},
			Limits: Limits{Document: DocumentCap, Policy: PolicyCap},
			Expected: `A detailed appeal strategy document including:
- Ranked list of appeal arguments (strongest first)
- Legal/regulatory citations
- Required supporting documents
- Recommended timeline
- Specific language to include
- Potential insurer counterarguments and rebuttals`,
			Prompt: appealStrategyPrompt,
		},
		{
			ID: LetterDrafting,
			Role: Role{
				Title: "Professional Appeal Letter Writer",
				Goal:  "Write compelling, professional appeal letters that maximize chance of success",
				Backstory: `You are a professional writer specializing in insurance appeal
letters. You know exactly how to structure an appeal, what tone to use, and
how to present arguments persuasively. Your letters are clear, factual, and
assertive without being aggressive. You include all required elements and
reference specific policy sections and regulations.` +
					excerpt("You use these proven templates as inspiration:", corpus.TemplatesHead(), corpus.Templates),
			},
			Reads:  []StageID{DocumentAnalysis, AppealStrategy},
			Inputs: InputPatient,
			Limits: Limits{Document: DocumentCap, Policy: PolicyCap},
			Expected: `A complete, professional appeal letter ready to be sent.
Include:
- Full letter text with proper formatting
- List of recommended enclosures
- Next steps for the patient`,
			Prompt: letterDraftingPrompt,
		},
		{
			ID: QualityReview,
			Role: Role{
				Title: "Quality Assurance Reviewer",
				Goal:  "Ensure the appeal letter is accurate, complete, professional, and persuasive",
				Backstory: `You are a meticulous editor and quality reviewer. You check
appeal letters for factual accuracy, proper formatting, persuasive language,
and completeness. You ensure all required elements are present, the tone is
appropriate, and the arguments are logically structured. You also verify that
any claims made are supported by the provided documentation.`,
			},
			Reads:  []StageID{DocumentAnalysis, LetterDrafting},
			Limits: Limits{Document: DocumentCap, Policy: PolicyCap},
			Expected: `The final, polished appeal letter with:
- All corrections made
- Improved language where needed
- Proper formatting
- Summary of changes made
- List of recommended next steps for patient
- Any remaining concerns or caveats`,
			Prompt: qualityReviewPrompt,
		},
	}
}

// excerpt appends a quoted reference text. An ellipsis marks a cut.
func excerpt(heading, text, full string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if len(text) < len(full) {
		text += "..."
	}
	return "\n\n" + heading + "\n" + text
}

func documentAnalysisPrompt(v *View) string {
	return fmt.Sprintf(`Analyze the following insurance document and extract ALL relevant information.

DOCUMENT TEXT:
%s

Extract and structure:
1. Claim Details:
   - Claim number
   - Member/Policy ID
   - Date of service
   - Provider name
   - Billed amount
   - Allowed amount
   - Denied amount

2. Denial Information:
   - Denial date
   - Denial code(s)
   - Stated denial reason
   - Any specific policy sections referenced

3. Patient/Member Information:
   - Patient name (if visible)
   - Coverage type

4. Important Deadlines:
   - Appeal deadline (if mentioned)
   - Any other time-sensitive information

If any information is not found, indicate "Not found in document".
Be thorough - missing information could hurt the appeal.`, v.Document())
}

func policyAnalysisPrompt(v *View) string {
	policy := v.Policy()
	if strings.TrimSpace(policy) == "" {
		policy = "Not provided"
	}
	return fmt.Sprintf(`Analyze the claim information and determine coverage.

CLAIM INFORMATION:
%s

POLICY DOCUMENT:
%s

Determine:
1. Is this type of service typically covered by health insurance?
2. Are there common exclusions that might apply?
3. Would prior authorization typically be required?
4. Are there any obvious policy violations by the insurer?
5. What policy sections would be relevant to this claim?

Even without the full policy, use your expertise to assess:
- Standard coverage expectations
- Common insurer mistakes
- Typical policy language for this type of service`, v.Output(DocumentAnalysis), policy)
}

func denialReviewPrompt(v *View) string {
	return fmt.Sprintf(`Review the denial and determine if it is valid or should be appealed.

CLAIM INFORMATION:
%s

COVERAGE ANALYSIS:
%s

DENIAL CODE ANALYSIS:
%s

Your analysis should cover:
1. Is the denial code appropriate for the stated reason?
2. Did the insurer follow proper procedures before denying?
3. Are there any factual errors in the denial?
4. Does the denial contradict standard insurance practices?
5. Are there regulatory violations in how the denial was handled?

Provide:
- Assessment: VALID, LIKELY INVALID, or UNCERTAIN
- Confidence level (Low/Medium/High)
- Specific issues found
- Key weaknesses in the insurer's position`, v.Output(DocumentAnalysis), v.Output(PolicyAnalysis), v.DenialReport())
}

func appealStrategyPrompt(v *View) string {
	return fmt.Sprintf(`Develop a comprehensive appeal strategy.

CLAIM INFORMATION:
%s

COVERAGE ANALYSIS:
%s

DENIAL REVIEW:
%s

Create an appeal strategy that includes:
1. Primary legal/regulatory grounds for appeal
2. Secondary supporting arguments
3. Required documentation to include
4. Specific policy sections to reference
5. IRDAI regulations and circulars that support the appeal
6. Recommended appeal level (insurer grievance cell, Insurance Ombudsman, Consumer Commission)
7. Timeline and deadlines to mention

Focus on the STRONGEST arguments. Insurance companies respond to:
- Clear policy violations
- Regulatory non-compliance
- Factual errors
- Precedent from similar cases`, v.Output(DocumentAnalysis), v.Output(PolicyAnalysis), v.Output(DenialReview))
}

func letterDraftingPrompt(v *View) string {
	p := v.Patient()
	return fmt.Sprintf(`Write a professional appeal letter based on the strategy.

CLAIM INFORMATION:
%s

APPEAL STRATEGY:
%s

PATIENT INFORMATION:
Name: %s
Address: %s
Phone: %s
Email: %s

Write a formal appeal letter that:
1. Clearly states this is a formal appeal
2. References the specific claim and denial
3. Presents arguments in order of strength
4. Cites specific policy sections and regulations
5. Includes all required formal elements
6. Requests specific action (reverse denial, process claim)
7. Mentions relevant deadlines
8. Lists enclosures/attachments

Tone should be:
- Professional and respectful
- Firm and assertive
- Factual, not emotional
- Clear and well-organized

Use placeholders like [CLAIM_NUMBER] for any missing information.`,
		v.Output(DocumentAnalysis), v.Output(AppealStrategy), p.Name, p.Address, p.Phone, p.Email)
}

func qualityReviewPrompt(v *View) string {
	return fmt.Sprintf(`Review and improve the appeal letter.

DRAFT APPEAL LETTER:
%s

ORIGINAL CLAIM INFO:
%s

Review for:
1. Factual Accuracy:
   - All claim numbers and dates correct
   - No factual claims that aren't supported

2. Completeness:
   - All required elements present
   - Claim details included
   - Specific request made
   - Deadline mentioned

3. Professionalism:
   - Appropriate tone
   - No emotional language
   - Clear and concise

4. Persuasiveness:
   - Arguments logically ordered
   - Evidence cited properly
   - Strong opening and closing

5. Formatting:
   - Proper letter format
   - Easy to read
   - Enclosures listed

Provide the FINAL, polished version of the letter with all improvements made.
After the letter, add a section headed **Next Steps:** with the recommended next
steps for the patient, a brief summary of changes and any remaining concerns.`,
		v.Output(LetterDrafting), v.Output(DocumentAnalysis))
}
