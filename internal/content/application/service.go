package application

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/blobpath"
	"github.com/crustntrust/site-api/internal/content/domain"
	"github.com/crustntrust/site-api/internal/identity"
)

const (
	MessageImageRequired        = "Bilde er påkrevd."
	MessageNoPublishAccess      = "Ingen tilgang til å publisere. Sjekk at du er logget inn med riktig konto."
	MessageCreatePublicationErr = "Kunne ikke legge til omtale. Prøv igjen."
	MessageUpdatePublicationErr = "Kunne ikke oppdatere omtale. Prøv igjen."
	MessageSaveLocationErr      = "Kunne ikke lagre lokasjonen. Prøv igjen."
)

// PublicationRepository stores publications. FindByID and Update report
// apperr.KindNotFound for unknown ids.
type PublicationRepository interface {
	List(ctx context.Context) ([]domain.Publication, error)
	FindByID(ctx context.Context, id string) (*domain.Publication, error)
	Create(ctx context.Context, p domain.Publication) (string, error)
	Update(ctx context.Context, p domain.Publication) error
}

// LocationRepository stores food truck stops.
type LocationRepository interface {
	List(ctx context.Context) ([]domain.Location, error)
	FindByID(ctx context.Context, id string) (*domain.Location, error)
	Create(ctx context.Context, l domain.Location) (string, error)
	Update(ctx context.Context, l domain.Location) error
}

// ImageStore uploads images and turns keys into URLs.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

// Image is an uploaded file.
type Image struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service manages publications and locations.
type Service struct {
	publications PublicationRepository
	locations    LocationRepository
	images       ImageStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(publications PublicationRepository, locations LocationRepository, images ImageStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		publications: publications,
		locations:    locations,
		images:       images,
		logger:       logger,
		now:          time.Now,
	}
}

// Publications lists articles newest first. Internal ones are only shown to admins.
func (s *Service) Publications(ctx context.Context, session identity.Session) ([]domain.Publication, error) {
	items, err := s.publications.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindOf(err), "list publications", err)
	}
	visible := make([]domain.Publication, 0, len(items))
	for _, p := range items {
		if p.AccessType == domain.AccessInternal && !session.IsAdmin {
			continue
		}
		p.ImageURL = s.resolve(ctx, p.ImagePath, p.ImageURL)
		visible = append(visible, p)
	}
	domain.SortPublications(visible)
	return visible, nil
}

// CreatePublication validates in, uploads image and stores the article.
func (s *Service) CreatePublication(ctx context.Context, session identity.Session, in domain.PublicationInput, image *Image) (*domain.Publication, error) {
	if err := requireAdmin(session, "create publication"); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, apperr.Validation("create publication", MessageImageRequired)
	}
	if msg := in.Validate(); msg != "" {
		return nil, apperr.Validation("create publication", msg)
	}
	in = in.Normalized()

	path, url, err := s.upload(ctx, blobpath.PublicationImage(s.now(), image.FileName), image)
	if err != nil {
		return nil, contentError("create publication", MessageCreatePublicationErr, err)
	}

	p := domain.Publication{
		Title:           in.Title,
		Description:     in.Description,
		ImagePath:       path,
		ImageURL:        url,
		ArticleURL:      in.ArticleURL,
		PublicationDate: in.PublicationDate,
		AccessType:      in.AccessType,
		UpdatedBy:       actor(session),
	}
	id, err := s.publications.Create(ctx, p)
	if err != nil {
		return nil, contentError("create publication", MessageCreatePublicationErr, err)
	}
	p.ID = id
	s.logger.Info("publication created", zap.String("id", id), zap.String("by", p.UpdatedBy))
	return &p, nil
}

// UpdatePublication replaces the editable fields of id. image is optional
// when the publication already has one.
func (s *Service) UpdatePublication(ctx context.Context, session identity.Session, id string, in domain.PublicationInput, image *Image) (*domain.Publication, error) {
	if err := requireAdmin(session, "update publication"); err != nil {
		return nil, err
	}
	if msg := in.Validate(); msg != "" {
		return nil, apperr.Validation("update publication", msg)
	}
	current, err := s.publications.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindOf(err), "update publication", err)
	}
	if image == nil && current.ImageURL == "" && current.ImagePath == "" {
		return nil, apperr.Validation("update publication", MessageImageRequired)
	}
	in = in.Normalized()

	p := *current
	if image != nil {
		p.ImagePath, p.ImageURL, err = s.upload(ctx, blobpath.PublicationImage(s.now(), image.FileName), image)
		if err != nil {
			return nil, contentError("update publication", MessageUpdatePublicationErr, err)
		}
	}
	p.Title = in.Title
	p.Description = in.Description
	p.ArticleURL = in.ArticleURL
	p.PublicationDate = in.PublicationDate
	p.AccessType = in.AccessType
	p.UpdatedBy = actor(session)

	if err := s.publications.Update(ctx, p); err != nil {
		return nil, contentError("update publication", MessageUpdatePublicationErr, err)
	}
	return &p, nil
}

// Locations lists stops in display order with directions filled in.
func (s *Service) Locations(ctx context.Context) ([]domain.Location, error) {
	items, err := s.locations.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindOf(err), "list locations", err)
	}
	for i := range items {
		items[i].ImageURL = s.resolve(ctx, items[i].ImagePath, items[i].ImageURL)
		items[i].MapsURL = items[i].DirectionsURL()
	}
	domain.SortLocations(items)
	return items, nil
}

// SaveLocation creates a stop when id is empty and updates it otherwise.
func (s *Service) SaveLocation(ctx context.Context, session identity.Session, id string, in domain.LocationInput, image *Image) (*domain.Location, error) {
	if err := requireAdmin(session, "save location"); err != nil {
		return nil, err
	}
	if msg := in.Validate(); msg != "" {
		return nil, apperr.Validation("save location", msg)
	}
	in = in.Normalized()

	var l domain.Location
	if id != "" {
		current, err := s.locations.FindByID(ctx, id)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindOf(err), "save location", err)
		}
		l = *current
	}
	if image != nil {
		var err error
		l.ImagePath, l.ImageURL, err = s.upload(ctx, blobpath.LocationImage(s.now(), image.FileName), image)
		if err != nil {
			return nil, contentError("save location", MessageSaveLocationErr, err)
		}
	}
	l.Name = in.Name
	l.Neighborhood = in.Neighborhood
	l.WeekdayHours = in.WeekdayHours
	l.WeekendHours = in.WeekendHours
	l.MapsURL = in.MapsURL
	l.SortOrder = in.SortOrder
	l.UpdatedBy = actor(session)

	if id == "" {
		newID, err := s.locations.Create(ctx, l)
		if err != nil {
			return nil, contentError("save location", MessageSaveLocationErr, err)
		}
		l.ID = newID
		return &l, nil
	}
	if err := s.locations.Update(ctx, l); err != nil {
		return nil, contentError("save location", MessageSaveLocationErr, err)
	}
	return &l, nil
}

func (s *Service) upload(ctx context.Context, key string, image *Image) (string, string, error) {
	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if err := s.images.Put(ctx, key, image.Body, image.Size, contentType); err != nil {
		return "", "", err
	}
	url, err := s.images.URL(ctx, key)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// resolve refreshes the URL of a stored key; presigned URLs expire.
func (s *Service) resolve(ctx context.Context, path, stored string) string {
	if path == "" {
		return stored
	}
	url, err := s.images.URL(ctx, path)
	if err != nil {
		s.logger.Warn("image url resolution failed", zap.String("path", path), zap.Error(err))
		return stored
	}
	return url
}

func requireAdmin(session identity.Session, op string) error {
	if !session.IsAdmin {
		return apperr.Permission(op, MessageNoPublishAccess)
	}
	return nil
}

func actor(session identity.Session) string {
	if a := session.Actor(); a != "" {
		return a
	}
	return "admin"
}

func contentError(op, fallback string, err error) error {
	kind := apperr.KindOf(err)
	message := fallback
	if kind == apperr.KindPermission {
		message = MessageNoPublishAccess
	}
	return &apperr.Error{Kind: kind, Op: op, Message: message, Err: err}
}
