package mongo

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rrens/opsflow/internal/domain"
)

// Identifiers are stored as canonical UUID strings.

type userWorkspaceDoc struct {
	WorkspaceID string `bson:"workspace_id"`
	Role        string `bson:"role"`
}

type userDoc struct {
	ID           string             `bson:"_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Provider     string             `bson:"provider"`
	Workspaces   []userWorkspaceDoc `bson:"workspaces"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func newUserDoc(u *domain.User) userDoc {
	ws := make([]userWorkspaceDoc, 0, len(u.Workspaces))
	for _, w := range u.Workspaces {
		ws = append(ws, userWorkspaceDoc{WorkspaceID: w.WorkspaceID.String(), Role: string(w.Role)})
	}
	return userDoc{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Provider:     u.Provider,
		Workspaces:   ws,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toDomain() *domain.User {
	ws := make([]domain.UserWorkspace, 0, len(d.Workspaces))
	for _, w := range d.Workspaces {
		ws = append(ws, domain.UserWorkspace{WorkspaceID: parseID(w.WorkspaceID), Role: domain.Role(w.Role)})
	}
	return &domain.User{
		ID:           parseID(d.ID),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		Provider:     d.Provider,
		Workspaces:   ws,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type memberDoc struct {
	UserID   string    `bson:"user_id"`
	Role     string    `bson:"role"`
	JoinedAt time.Time `bson:"joined_at"`
}

func newMemberDoc(m domain.WorkspaceMember) memberDoc {
	return memberDoc{UserID: m.UserID.String(), Role: string(m.Role), JoinedAt: m.JoinedAt}
}

type workspaceDoc struct {
	ID        string      `bson:"_id"`
	Name      string      `bson:"name"`
	Slug      string      `bson:"slug"`
	OwnerID   string      `bson:"owner_id"`
	Members   []memberDoc `bson:"members"`
	CreatedAt time.Time   `bson:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

func newWorkspaceDoc(w *domain.Workspace) workspaceDoc {
	members := make([]memberDoc, 0, len(w.Members))
	for _, m := range w.Members {
		members = append(members, newMemberDoc(m))
	}
	return workspaceDoc{
		ID:        w.ID.String(),
		Name:      w.Name,
		Slug:      w.Slug,
		OwnerID:   w.OwnerID.String(),
		Members:   members,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func (d workspaceDoc) toDomain() *domain.Workspace {
	members := make([]domain.WorkspaceMember, 0, len(d.Members))
	for _, m := range d.Members {
		members = append(members, domain.WorkspaceMember{
			UserID:   parseID(m.UserID),
			Role:     domain.Role(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	return &domain.Workspace{
		ID:        parseID(d.ID),
		Name:      d.Name,
		Slug:      d.Slug,
		OwnerID:   parseID(d.OwnerID),
		Members:   members,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type fieldDoc struct {
	ID          string   `bson:"id"`
	Type        string   `bson:"type"`
	Label       string   `bson:"label"`
	Placeholder string   `bson:"placeholder,omitempty"`
	Required    bool     `bson:"required"`
	Options     []string `bson:"options,omitempty"`
}

type settingsDoc struct {
	CollectEmails    bool `bson:"collect_emails"`
	LimitOneResponse bool `bson:"limit_one_response"`
}

type formDoc struct {
	ID               string      `bson:"_id"`
	WorkspaceID      string      `bson:"workspace_id"`
	CreatorID        string      `bson:"creator_id"`
	Name             string      `bson:"name"`
	Description      string      `bson:"description"`
	IsPublished      bool        `bson:"is_published"`
	SubmissionsCount int64       `bson:"submissions_count"`
	Content          []fieldDoc  `bson:"content"`
	Theme            bson.M      `bson:"theme"`
	Settings         settingsDoc `bson:"settings"`
	CreatedAt        time.Time   `bson:"created_at"`
	UpdatedAt        time.Time   `bson:"updated_at"`
}

func newFieldDocs(fields []domain.Field) []fieldDoc {
	out := make([]fieldDoc, 0, len(fields))
	for _, f := range fields {
		out = append(out, fieldDoc{
			ID:          f.ID,
			Type:        string(f.Type),
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Options:     f.Options,
		})
	}
	return out
}

func newFormDoc(f *domain.Form) formDoc {
	return formDoc{
		ID:               f.ID.String(),
		WorkspaceID:      f.WorkspaceID.String(),
		CreatorID:        f.CreatorID.String(),
		Name:             f.Name,
		Description:      f.Description,
		IsPublished:      f.IsPublished,
		SubmissionsCount: f.SubmissionsCount,
		Content:          newFieldDocs(f.Content),
		Theme:            bson.M(f.Theme),
		Settings:         settingsDoc(f.Settings),
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func (d formDoc) toDomain() *domain.Form {
	content := make([]domain.Field, 0, len(d.Content))
	for _, f := range d.Content {
		content = append(content, domain.Field{
			ID:          f.ID,
			Type:        domain.FieldType(f.Type),
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Options:     f.Options,
		})
	}
	theme := domain.Theme{}
	for k, v := range d.Theme {
		theme[k] = normalize(v)
	}
	return &domain.Form{
		ID:               parseID(d.ID),
		WorkspaceID:      parseID(d.WorkspaceID),
		CreatorID:        parseID(d.CreatorID),
		Name:             d.Name,
		Description:      d.Description,
		IsPublished:      d.IsPublished,
		SubmissionsCount: d.SubmissionsCount,
		Content:          content,
		Theme:            theme,
		Settings:         domain.FormSettings(d.Settings),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

type submissionDoc struct {
	ID              string    `bson:"_id"`
	FormID          string    `bson:"form_id"`
	Data            bson.M    `bson:"data"`
	RespondentEmail string    `bson:"respondent_email,omitempty"`
	DedupeKey       string    `bson:"dedupe_key,omitempty"`
	SubmittedAt     time.Time `bson:"submitted_at"`
}

func newSubmissionDoc(s *domain.Submission) submissionDoc {
	return submissionDoc{
		ID:              s.ID.String(),
		FormID:          s.FormID.String(),
		Data:            bson.M(s.Data),
		RespondentEmail: s.RespondentEmail,
		DedupeKey:       s.DedupeKey,
		SubmittedAt:     s.SubmittedAt,
	}
}

func (d submissionDoc) toDomain() *domain.Submission {
	data := make(map[string]any, len(d.Data))
	for k, v := range d.Data {
		data[k] = normalize(v)
	}
	return &domain.Submission{
		ID:              parseID(d.ID),
		FormID:          parseID(d.FormID),
		Data:            data,
		RespondentEmail: d.RespondentEmail,
		DedupeKey:       d.DedupeKey,
		SubmittedAt:     d.SubmittedAt,
	}
}

// normalize converts driver container types back into the plain shapes
// produced by encoding/json so domain code can type-switch on them
func normalize(v any) any {
	switch val := v.(type) {
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	}
	return v
}

func parseID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
