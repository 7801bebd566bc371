package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	contentdomain "github.com/crustntrust/site-api/internal/content/domain"
	formsdomain "github.com/crustntrust/site-api/internal/forms/domain"
)

// FormDocument is a form definition as stored. _id equals the slug.
// Questions stay loosely typed so that hand-edited documents still load.
type FormDocument struct {
	ID          string     `bson:"_id"`
	Slug        string     `bson:"slug"`
	Title       string     `bson:"title,omitempty"`
	Description string     `bson:"description,omitempty"`
	Questions   []bson.M   `bson:"questions,omitempty"`
	CreatedAt   *time.Time `bson:"createdAt,omitempty"`
	UpdatedAt   *time.Time `bson:"updatedAt,omitempty"`
}

// SubmissionDocument is one stored submission.
type SubmissionDocument struct {
	ID              string            `bson:"_id"`
	FormID          string            `bson:"formId"`
	FormSlug        string            `bson:"formSlug"`
	Answers         map[string]string `bson:"answers"`
	ImagePaths      []string          `bson:"imagePaths,omitempty"`
	Status          string            `bson:"status"`
	StatusUpdatedBy string            `bson:"statusUpdatedBy,omitempty"`
	StatusUpdatedAt *time.Time        `bson:"statusUpdatedAt,omitempty"`
	ReviewedAt      *time.Time        `bson:"reviewedAt,omitempty"`
	SubmittedAt     *time.Time        `bson:"submittedAt,omitempty"`
}

// SettingDocument keeps the flag raw: a missing or non-boolean value must
// stay distinguishable from an explicit false.
type SettingDocument struct {
	ID                    string     `bson:"_id"`
	AcceptingApplications any        `bson:"acceptingApplications,omitempty"`
	UpdatedAt             *time.Time `bson:"updatedAt,omitempty"`
	UpdatedBy             string     `bson:"updatedBy,omitempty"`
}

// PublicationDocument is one stored article. isPublic is the legacy
// visibility flag that predates accessType.
type PublicationDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description"`
	ImagePath       string             `bson:"imagePath,omitempty"`
	ImageURL        string             `bson:"imageUrl,omitempty"`
	ArticleURL      string             `bson:"articleUrl"`
	PublicationDate string             `bson:"publicationDate"`
	AccessType      any                `bson:"accessType,omitempty"`
	IsPublic        any                `bson:"isPublic,omitempty"`
	CreatedAt       *time.Time         `bson:"createdAt,omitempty"`
	UpdatedAt       *time.Time         `bson:"updatedAt,omitempty"`
	UpdatedBy       string             `bson:"updatedBy,omitempty"`
}

// LocationDocument is one stored food truck stop.
type LocationDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Neighborhood string             `bson:"neighborhood,omitempty"`
	WeekdayHours string             `bson:"weekdayHours,omitempty"`
	WeekendHours string             `bson:"weekendHours,omitempty"`
	ImagePath    string             `bson:"imagePath,omitempty"`
	ImageURL     string             `bson:"imageUrl,omitempty"`
	MapsURL      string             `bson:"mapsUrl,omitempty"`
	SortOrder    int                `bson:"sortOrder"`
	UpdatedAt    *time.Time         `bson:"updatedAt,omitempty"`
	UpdatedBy    string             `bson:"updatedBy,omitempty"`
}

// FailedNotificationDocument records a notification that exhausted its retries.
type FailedNotificationDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Target      string             `bson:"target"`
	Payload     any                `bson:"payload"`
	Error       string             `bson:"error"`
	Attempts    int                `bson:"attempts"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	LastTriedAt time.Time          `bson:"lastTriedAt"`
}

func (d FormDocument) toDomain() formsdomain.FormDefinition {
	raws := make([]formsdomain.RawQuestion, 0, len(d.Questions))
	for _, q := range d.Questions {
		raws = append(raws, formsdomain.RawQuestion(plainMap(q)))
	}
	slug := d.Slug
	if slug == "" {
		slug = d.ID
	}
	return formsdomain.FormDefinition{
		ID:          d.ID,
		Slug:        slug,
		Title:       d.Title,
		Description: d.Description,
		Questions:   formsdomain.NormalizeQuestions(raws),
		UpdatedAt:   d.UpdatedAt,
	}
}

func formToDocument(f formsdomain.FormDefinition) FormDocument {
	questions := make([]bson.M, 0, len(f.Questions))
	for _, q := range f.Questions {
		questions = append(questions, bson.M(q.Raw()))
	}
	return FormDocument{
		ID:          f.Slug,
		Slug:        f.Slug,
		Title:       f.Title,
		Description: f.Description,
		Questions:   questions,
	}
}

func (d SubmissionDocument) toDomain() formsdomain.Submission {
	answers := d.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	status, ok := formsdomain.ParseStatus(d.Status)
	if !ok {
		status = formsdomain.StatusAwaitingReview
	}
	return formsdomain.Submission{
		ID:              d.ID,
		FormID:          d.FormID,
		FormSlug:        d.FormSlug,
		Answers:         answers,
		ImagePaths:      d.ImagePaths,
		Status:          status,
		StatusUpdatedBy: d.StatusUpdatedBy,
		StatusUpdatedAt: d.StatusUpdatedAt,
		ReviewedAt:      d.ReviewedAt,
		SubmittedAt:     d.SubmittedAt,
	}
}

func (d PublicationDocument) toDomain() contentdomain.Publication {
	return contentdomain.Publication{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Description:     d.Description,
		ImagePath:       d.ImagePath,
		ImageURL:        d.ImageURL,
		ArticleURL:      d.ArticleURL,
		PublicationDate: d.PublicationDate,
		AccessType:      contentdomain.ResolveAccessType(d.AccessType, d.IsPublic),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		UpdatedBy:       d.UpdatedBy,
	}
}

func (d LocationDocument) toDomain() contentdomain.Location {
	return contentdomain.Location{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Neighborhood: d.Neighborhood,
		WeekdayHours: d.WeekdayHours,
		WeekendHours: d.WeekendHours,
		ImagePath:    d.ImagePath,
		ImageURL:     d.ImageURL,
		MapsURL:      d.MapsURL,
		SortOrder:    d.SortOrder,
		UpdatedAt:    d.UpdatedAt,
		UpdatedBy:    d.UpdatedBy,
	}
}

// plain converts decoded BSON containers into the plain Go maps and slices
// the domain normalizers understand.
func plain(value any) any {
	switch v := value.(type) {
	case bson.M:
		return plainMap(v)
	case map[string]any:
		return plainMap(v)
	case bson.D:
		m := make(map[string]any, len(v))
		for _, e := range v {
			m[e.Key] = plain(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, plain(item))
		}
		return out
	default:
		return v
	}
}

func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}
