package permission

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orris-inc/f2fpay/internal/shared/constants"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

type PolicyRule struct {
	Role     string   `yaml:"role"`
	Resource string   `yaml:"resource"`
	Actions  []string `yaml:"actions"`
}

type RoleInheritance struct {
	Role   string `yaml:"role"`
	Parent string `yaml:"parent"`
}

// PolicySeed is the on-disk shape of configs/policies.yaml.
type PolicySeed struct {
	Policies []PolicyRule      `yaml:"policies"`
	Inherits []RoleInheritance `yaml:"inherits"`
}

// DefaultPolicySeed lets admins read and refund payments.
func DefaultPolicySeed() *PolicySeed {
	return &PolicySeed{
		Policies: []PolicyRule{
			{
				Role:     constants.RoleAdmin,
				Resource: constants.ResourcePayments,
				Actions:  []string{constants.ActionRead, constants.ActionRefund},
			},
		},
	}
}

func LoadPolicySeed(path string) (*PolicySeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParsePolicySeed(raw)
}

func ParsePolicySeed(raw []byte) (*PolicySeed, error) {
	var seed PolicySeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	for i, rule := range seed.Policies {
		if rule.Role == "" || rule.Resource == "" || len(rule.Actions) == 0 {
			return nil, fmt.Errorf("policy %d: role, resource and actions are required", i)
		}
	}
	for i, inh := range seed.Inherits {
		if inh.Role == "" || inh.Parent == "" {
			return nil, fmt.Errorf("inherit %d: role and parent are required", i)
		}
	}
	return &seed, nil
}

// Apply adds every rule of the seed. Existing rules are left untouched.
func (s *PolicySeed) Apply(e *Enforcer, log logger.Interface) error {
	added := 0
	for _, rule := range s.Policies {
		for _, action := range rule.Actions {
			if err := e.AddPolicy(rule.Role, rule.Resource, action); err != nil {
				log.Errorw("failed to seed policy",
					"error", err,
					"role", rule.Role,
					"resource", rule.Resource,
					"action", action)
				return err
			}
			added++
		}
	}

	for _, inh := range s.Inherits {
		if err := e.AddRoleInheritance(inh.Role, inh.Parent); err != nil {
			return err
		}
	}

	log.Infow("permission policies seeded", "rules", added, "inherits", len(s.Inherits))
	return nil
}
