package constant

// ClassifierPromptTemplate expects (subject, message). The model must answer
// with exactly one of the two category strings; anything containing "order"
// is coerced to order request downstream.
const ClassifierPromptTemplate = `Analyze this email and classify its intent:

**Order Request Indicators**:
- Specific product references (SKU, model numbers)
- Quantity specifications ("2 units", "all available")
- Purchase verbs ("buy", "order", "ship")
- Payment/shipping details

**Product Inquiry Indicators**:
- Question words ("how", "what", "does")
- Feature requests ("color options", "dimensions")
- Comparison requests ("vs X product")
- General information

**Examples**:
Order: "Please send 3 units of LTH-0978 to my NJ warehouse"
Inquiry: "What material is used in the winter collection jackets?"

**Email to Classify**:
Subject: %s
Content: %s

Respond ONLY with either:
- "order request"
- "product inquiry"`

// MaxClassifierInputLen caps subject/body fed to the model to prevent token
// overflow on pathological emails.
const MaxClassifierInputLen = 2000
