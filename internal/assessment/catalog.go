package assessment

type Option struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Question struct {
	Key     string   `json:"key"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// Option returns the option with the given label.
func (q Question) Option(label string) (Option, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o, true
		}
	}
	return Option{}, false
}

// Catalog is an ordered questionnaire. The default one collects the
// inputs of the diabetes risk model.
type Catalog []Question

var DefaultCatalog = Catalog{
	{
		Key:    "Pregnancies",
		Prompt: "How many times have you been pregnant? (Enter 0 if male or not applicable)",
		Options: []Option{
			{"0", 0}, {"1-2", 1.5}, {"3-5", 4}, {"6+", 6}, {"Unknown", 0},
		},
	},
	{
		Key:    "Glucose",
		Prompt: "What was your last glucose level (mg/dL)?",
		Options: []Option{
			{"<100", 80}, {"100-125", 112.5}, {">125", 150}, {"Unknown", 100},
		},
	},
	{
		Key:    "BloodPressure",
		Prompt: "What is your typical blood pressure (mmHg)?",
		Options: []Option{
			{"<80", 70}, {"80-89", 84.5}, {"90+", 100}, {"Unknown", 80},
		},
	},
	{
		Key:    "SkinThickness",
		Prompt: "What is your skin thickness (triceps mm)?",
		Options: []Option{
			{"<20", 15}, {"20-30", 25}, {"30+", 35}, {"Unknown", 20},
		},
	},
	{
		Key:    "Insulin",
		Prompt: "What is your insulin level (mu U/ml)?",
		Options: []Option{
			{"<50", 30}, {"50-100", 75}, {">100", 120}, {"Unknown", 50},
		},
	},
	{
		Key:    "BMI",
		Prompt: "What is your BMI?",
		Options: []Option{
			{"<18.5", 18}, {"18.5-24.9", 21.7}, {"25-29.9", 27.5}, {"30+", 35}, {"Unknown", 25},
		},
	},
	{
		Key:    "DiabetesPedigreeFunction",
		Prompt: "Do you have a family history of diabetes?",
		Options: []Option{
			{"No", 0.2}, {"Yes", 0.8}, {"Unknown", 0.5},
		},
	},
	{
		Key:    "Age",
		Prompt: "How old are you?",
		Options: []Option{
			{"Young (<30)", 25}, {"Middle (30-50)", 40}, {"Older (>50)", 60}, {"Unknown", 33},
		},
	},
}

func (c Catalog) Has(key string) bool {
	for _, q := range c {
		if q.Key == key {
			return true
		}
	}
	return false
}

// Factors lists the answers in catalog order, skipping unanswered keys.
func (c Catalog) Factors(answers map[string]float64) []Factor {
	factors := make([]Factor, 0, len(answers))
	for _, q := range c {
		if v, ok := answers[q.Key]; ok {
			factors = append(factors, Factor{Key: q.Key, Value: v})
		}
	}
	return factors
}
