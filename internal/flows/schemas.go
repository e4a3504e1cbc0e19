package flows

import "github.com/Trigerxx3/cyber/internal/llm"

func stringList(description string) *llm.Schema {
	return &llm.Schema{Type: llm.TypeArray, Description: description, Items: &llm.Schema{Type: llm.TypeString}}
}

var analysisSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"indicators": stringList("Potential drug trafficking indicators found in the content."),
		"riskLevel": {
			Type:        llm.TypeString,
			Description: "The overall risk level associated with the content.",
			Enum:        []string{"Low", "Medium", "High"},
		},
		"reasoning":       {Type: llm.TypeString, Description: "Reasoning behind the indicators and risk level."},
		"matchedKeywords": stringList("Drug-related keywords found in the content."),
		"matchedEmojis":   stringList("Drug-related emojis found in the content."),
	},
	Required: []string{"indicators", "riskLevel", "reasoning", "matchedKeywords", "matchedEmojis"},
}

var riskSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"riskScore":  {Type: llm.TypeNumber, Description: "Likelihood of drug trafficking involvement, 0 to 100."},
		"riskLevel":  {Type: llm.TypeString, Description: "Qualitative risk level: Low, Medium or High."},
		"indicators": stringList("Indicators from the analysis that suggest drug trafficking."),
	},
	Required: []string{"riskScore", "riskLevel", "indicators"},
}

var reportSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"report": {Type: llm.TypeString, Description: "The generated summary report."},
	},
	Required: []string{"report"},
}

var userSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"linkedProfiles": stringList(`Potential linked profiles on other platforms, formatted "platform:username".`),
		"email":          {Type: llm.TypeString, Description: "A potential email address associated with the user.", Nullable: true},
		"riskLevel": {
			Type:        llm.TypeString,
			Description: "The assessed risk level of the user.",
			Enum:        []string{"Low", "Medium", "High", "Critical"},
		},
		"summary": {Type: llm.TypeString, Description: "Findings and reasoning for the risk assessment."},
	},
	Required: []string{"linkedProfiles", "riskLevel", "summary"},
}
