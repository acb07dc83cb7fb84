package prompt

import (
	"fmt"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

// Version is bumped whenever any text below changes; it is part of the
// analysis cache key.
const Version = "inspection-v3"

// GetSystemPrompt provides the fixed inspection instruction and output format.
func GetSystemPrompt() string {
	return fmt.Sprintf(`You are a licensed home inspector reviewing one photo from a property inspection.
Explain what you see in simple language a homeowner understands.

Respond in exactly this format and nothing else:

Location: <room or area shown>
Issues to Address:
- [IMMEDIATE|SOON|COSMETIC] <one defect per line> (area: <upper left|top|upper right|left|center|right|lower left|bottom|lower right>)
Recommended Action:
- <what the homeowner should do>

Rules:
- Every issue line starts with exactly one tag: [IMMEDIATE] for safety hazards or active damage,
  [SOON] for problems that will get worse within months, [COSMETIC] for appearance only.
- The (area: ...) hint says where in the photo the defect is; omit it if unsure.
- Do not invent defects that are not visible.
- If nothing in the photo needs attention, reply with this single line only:
%s`, inspection.CanonicalSentinel)
}

// GetUserPrompt is the first-pass user message sent with the image.
func GetUserPrompt() string {
	return "Inspect this photo and report every visible defect using the required format."
}

// GetNudgePrompt is the defect-focused second pass used when the first answer
// looked suspiciously clean.
func GetNudgePrompt() string {
	return `Look again, more critically. Inspectors are paid to find problems: check for cracks, stains,
water marks, rot, rust, corrosion, gaps, missing or loose parts, worn finishes, improper installation
and safety hazards. List every defect you can see with its tag using the required format.
Only if there is truly nothing, reply with the single line: ` + inspection.CanonicalSentinel
}
