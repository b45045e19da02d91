package analysis

import (
	"embed"
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

//go:embed prompts/*.md
var promptFS embed.FS

// Analyst roles of the panel, in presentation order.
const (
	RoleFinancial = "financial_analyst"
	RoleVC        = "vc_analyst"
	RoleCTO       = "cto_analyst"
	RoleMarketing = "marketing_analyst"
	RoleProduct   = "product_analyst"
)

// Role is one analyst of the panel.
type Role struct {
	Key   string
	Title string
	// Prompt renders the role's system and human messages from a "context" variable.
	Prompt prompts.ChatPromptTemplate
}

const successHuman = "Analyze the startup and predict its success rate."

var (
	successPrompt = mustChatPrompt("success", successHuman)

	// Roles lists the panel analysts.
	Roles = []Role{
		newRole(RoleFinancial, "Financial Analyst"),
		newRole(RoleVC, "VC Analyst"),
		newRole(RoleCTO, "CTO Analyst"),
		newRole(RoleMarketing, "Marketing Analyst"),
		newRole(RoleProduct, "Product Analyst"),
	}
)

// RoleKeys returns the keys of Roles in order.
func RoleKeys() []string {
	keys := make([]string, len(Roles))
	for i, r := range Roles {
		keys[i] = r.Key
	}
	return keys
}

func newRole(key, title string) Role {
	return Role{
		Key:    key,
		Title:  title,
		Prompt: mustChatPrompt(key, fmt.Sprintf("Give your assessment of this startup as its %s.", title)),
	}
}

// mustChatPrompt loads prompts/<name>.md as the system message. Templates are
// read once at init; a missing file is a build defect.
func mustChatPrompt(name, human string) prompts.ChatPromptTemplate {
	raw, err := promptFS.ReadFile("prompts/" + name + ".md")
	if err != nil {
		panic(fmt.Sprintf("analysis: missing prompt %s: %v", name, err))
	}
	return prompts.NewChatPromptTemplate([]prompts.MessageFormatter{
		prompts.NewSystemMessagePromptTemplate(string(raw), []string{"context"}),
		prompts.NewHumanMessagePromptTemplate(human, nil),
	})
}
