// Package authz decides which workspace roles may perform which actions.
package authz

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rrens/opsflow/internal/domain"
	"github.com/casbin/casbin/v3"
	"github.com/rs/zerolog/log"
)

//go:embed model.conf policy.csv
var embedFS embed.FS

// Action is an "object:verb" pair checked against the role policy
type Action string

// Workspace-scoped actions
const (
	WorkspaceRead Action = "workspace:read"
	MemberList    Action = "member:list"
	MemberAdd     Action = "member:add"
	MemberRemove  Action = "member:remove"
	FormCreate    Action = "form:create"
	FormRead      Action = "form:read"
	FormUpdate    Action = "form:update"
	ResponseRead  Action = "response:read"
)

func (a Action) split() (string, string) {
	obj, act, _ := strings.Cut(string(a), ":")
	return obj, act
}

// Enforcer evaluates the embedded role policy. It is read-only after construction.
type Enforcer struct {
	e *casbin.Enforcer
}

// NewEnforcer loads the embedded model and policy
func NewEnforcer() (*Enforcer, error) {
	dir, err := os.MkdirTemp("", "opsflow-casbin-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create policy dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := writeEmbedToDir(dir, "model.conf", "policy.csv"); err != nil {
		return nil, err
	}

	return NewEnforcerFromFiles(
		filepath.Join(dir, "model.conf"),
		filepath.Join(dir, "policy.csv"),
	)
}

// NewEnforcerFromFiles loads a casbin model and policy from disk. The model
// must keep the (role, object, verb) request shape.
func NewEnforcerFromFiles(modelPath, policyPath string) (*Enforcer, error) {
	if modelPath == "" || policyPath == "" {
		return nil, fmt.Errorf("both model and policy paths are required")
	}

	e, err := casbin.NewEnforcer(modelPath, policyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{e: e}, nil
}

// Load uses the files when either path is set and the embedded policy otherwise
func Load(modelPath, policyPath string) (*Enforcer, error) {
	if modelPath == "" && policyPath == "" {
		return NewEnforcer()
	}
	log.Info().Str("model", modelPath).Str("policy", policyPath).Msg("Loading authorization policy from files")
	return NewEnforcerFromFiles(modelPath, policyPath)
}

func writeEmbedToDir(dir string, names ...string) error {
	for _, name := range names {
		data, err := embedFS.ReadFile(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
			return err
		}
	}
	return nil
}

// Allow reports whether role may perform action
func (en *Enforcer) Allow(role domain.Role, action Action) (bool, error) {
	if role == "" {
		return false, nil
	}
	obj, act := action.split()
	allowed, err := en.e.Enforce(string(role), obj, act)
	if err != nil {
		log.Error().Err(err).Str("role", string(role)).Str("action", string(action)).Msg("Policy evaluation failed")
		return false, err
	}
	return allowed, nil
}
