package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/identity"
	"github.com/crustntrust/site-api/internal/settings/domain"
)

const (
	MessageNoAccess    = "Ingen tilgang til å endre innstillinger. Sjekk at du er logget inn med riktig konto."
	MessageNotSignedIn = "Du må være logget inn for å endre innstillinger."
	MessageSaveFailed  = "Kunne ikke lagre innstillingen. Prøv igjen."
)

// Repository stores setting documents. Get reports apperr.KindNotFound when
// the document was never written. Watch calls fn with the flag after every
// change of the document and blocks until ctx ends or the stream fails.
type Repository interface {
	Get(ctx context.Context, id string) (*domain.SiteSetting, error)
	SetAcceptingApplications(ctx context.Context, id string, accepting bool, updatedBy string) error
	Watch(ctx context.Context, id string, fn func(domain.Flag)) error
}

// Service reads and flips the "accepting applications" switch.
type Service struct {
	repo       Repository
	logger     *zap.Logger
	seq        atomic.Uint64
	retryDelay time.Duration
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, retryDelay: 5 * time.Second}
}

// Accepting reports whether applications are open. Missing documents,
// missing fields and read failures all read as true.
func (s *Service) Accepting(ctx context.Context) bool {
	setting, err := s.repo.Get(ctx, domain.JobApplicationsID)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			s.logger.Warn("settings read failed, defaulting to open", zap.Error(err))
		}
		return true
	}
	return setting.AcceptingApplications.Enabled()
}

// Set writes accepting on behalf of session. Only admin sessions may write.
func (s *Service) Set(ctx context.Context, session identity.Session, accepting bool) error {
	if !session.SignedIn() {
		return apperr.Permission("set accepting applications", MessageNotSignedIn)
	}
	if !session.IsAdmin {
		return apperr.Permission("set accepting applications", MessageNoAccess)
	}
	actor := session.Actor()
	if actor == "" {
		actor = "admin"
	}
	if err := s.repo.SetAcceptingApplications(ctx, domain.JobApplicationsID, accepting, actor); err != nil {
		s.logger.Error("settings write failed", zap.Bool("accepting", accepting), zap.Error(err))
		kind := apperr.KindOf(err)
		message := MessageSaveFailed
		if kind == apperr.KindPermission {
			message = MessageNoAccess
		}
		return &apperr.Error{Kind: kind, Op: "set accepting applications", Message: message, Err: err}
	}
	s.logger.Info("accepting applications changed", zap.Bool("accepting", accepting), zap.String("by", actor))
	return nil
}

// Toggle flips the current value and returns the new one.
func (s *Service) Toggle(ctx context.Context, session identity.Session) (bool, error) {
	next := !s.Accepting(ctx)
	if err := s.Set(ctx, session, next); err != nil {
		return !next, err
	}
	return next, nil
}

// Subscribe delivers the current value and then every change to fn until the
// returned function is called. fn runs on a single goroutine. A broken stream
// reports true and is re-opened after a delay.
func (s *Service) Subscribe(ctx context.Context, fn func(domain.Snapshot)) (unsubscribe func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)

	deliver := func(accepting bool) {
		fn(domain.Snapshot{Seq: s.seq.Add(1), AcceptingApplications: accepting})
	}

	go func() {
		defer wg.Done()
		deliver(s.Accepting(ctx))
		for {
			err := s.repo.Watch(ctx, domain.JobApplicationsID, func(flag domain.Flag) {
				deliver(flag.Enabled())
			})
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("settings stream failed, defaulting to open", zap.Error(err))
			deliver(true)

			select {
			case <-ctx.Done():
				return
			case <-time.After(s.retryDelay):
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
