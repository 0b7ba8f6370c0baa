// Package dispatch sequences one notification request end-to-end:
// validation, localization, template resolution, rendering, bounded-retry
// delivery, and status write-back.
package dispatch

import (
	"context"
	"time"

	stderrors "email-dispatch/internal/common/errors"
	"email-dispatch/internal/common/logger"
	"email-dispatch/internal/common/metrics"
	"email-dispatch/internal/locale"
	"email-dispatch/internal/request"
	"email-dispatch/internal/retry"
	"email-dispatch/internal/store"
	"email-dispatch/internal/template"
	"email-dispatch/internal/transport"
)

// Config holds the pipeline's limits and defaults.
type Config struct {
	FromAddress     string
	AppName         string
	DefaultLanguage string
	DefaultEngine   string
	UserCollection  string
	Limits          request.Limits
	Retry           retry.Options
}

// ServiceDependencies are the collaborators injected into the orchestrator,
// constructed once per process.
type ServiceDependencies struct {
	Store     store.DocumentStore
	Mailer    transport.Mailer
	Templates template.Provider
	Logger    logger.Logger
}

// Service is the dispatch orchestrator. It holds no per-request state, so
// concurrent invocations for different records are safe.
type Service struct {
	store     store.DocumentStore
	mailer    transport.Mailer
	templates template.Provider
	config    *Config
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		store:     deps.Store,
		mailer:    deps.Mailer,
		templates: deps.Templates,
		config:    config,
		logger:    deps.Logger,
	}
}

// Process handles one newly created request record. The returned error is
// the primary processing failure, surfaced to the event source for
// observability; the record itself always ends in sent or error unless the
// final status write fails, in which case it stays in processing and the
// failure is logged.
func (s *Service) Process(ctx context.Context, collection, id string, doc store.Document) error {
	started := time.Now()
	log := s.logger.WithFields(map[string]interface{}{
		"collection": collection,
		"documentId": id,
	})

	log.Info("processing notification request", map[string]interface{}{
		"fields": request.SanitizeFields(doc),
	})

	// Mark the record before any external call.
	s.writeStatus(ctx, log, collection, id, processingFields(started))

	messageID, err := s.execute(ctx, log, collection, id, doc)
	metrics.ProcessingDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.RequestsProcessed.WithLabelValues(StatusError).Inc()
		log.WithError(err).Error("notification request failed", map[string]interface{}{
			"code": string(stderrors.CodeOf(err)),
		})
		s.writeStatus(ctx, log, collection, id, errorFields(err, time.Now()))
		return err
	}

	metrics.RequestsProcessed.WithLabelValues(StatusSent).Inc()
	log.Info("notification request processed", map[string]interface{}{
		"messageId": messageID,
	})
	s.writeStatus(ctx, log, collection, id, sentFields(messageID, time.Now()))
	return nil
}

func (s *Service) execute(ctx context.Context, log logger.Logger, collection, id string, doc store.Document) (string, error) {
	if err := request.CheckShape(doc); err != nil {
		return "", err
	}

	req := request.Decode(collection, id, doc)
	if err := req.Validate(s.config.Limits); err != nil {
		return "", err
	}

	profile := s.fetchProfile(ctx, log, req)

	userLang := ""
	if profile != nil {
		userLang = profile.Language
	}
	lang := locale.Resolve(req.Language, userLang, s.config.DefaultLanguage, locale.Supported)

	subjectSrc, textSrc, htmlSrc, err := s.resolveSources(req, lang)
	if err != nil {
		return "", err
	}

	renderCtx := buildRenderContext(req, profile, s.config.AppName)

	engine := req.TemplateEngine
	if engine == "" {
		engine = s.config.DefaultEngine
	}

	subject, err := template.Render(subjectSrc, renderCtx, engine, template.FieldSubject)
	if err != nil {
		return "", err
	}
	text, err := template.Render(textSrc, renderCtx, engine, template.FieldText)
	if err != nil {
		return "", err
	}
	html, err := template.Render(htmlSrc, renderCtx, engine, template.FieldHTML)
	if err != nil {
		return "", err
	}

	msg := &transport.Message{
		From:    s.config.FromAddress,
		To:      req.Recipients,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}

	messageID, err := retry.Do(ctx, log, s.config.Retry, func(ctx context.Context) (string, error) {
		metrics.TransportAttempts.Inc()
		mid, sendErr := s.mailer.Send(ctx, msg)
		if sendErr != nil {
			metrics.TransportFailures.Inc()
		}
		return mid, sendErr
	})
	if err != nil {
		return "", stderrors.NewTransportError(err)
	}
	return messageID, nil
}

// fetchProfile is absent-tolerant: a missing profile and a store-level
// failure both yield nil, per the current fallback policy. The failure is
// logged so it stays observable.
func (s *Service) fetchProfile(ctx context.Context, log logger.Logger, req *request.NotificationRequest) *store.UserProfile {
	collection := req.UserCollection
	if collection == "" {
		collection = s.config.UserCollection
	}

	profile, err := store.GetUserProfile(ctx, s.store, collection, req.UserID)
	if err != nil {
		log.WithError(err).Warn("user profile fetch failed, continuing without profile", map[string]interface{}{
			"userId":         req.UserID,
			"userCollection": collection,
		})
		return nil
	}
	return profile
}

// resolveSources picks the subject/text/html sources: the resolved template
// variant field by field, each falling back to the literal request field.
// When neither side provides any of the three, the request is unresolvable.
func (s *Service) resolveSources(req *request.NotificationRequest, lang string) (subject, text, html string, err error) {
	variant, ok := template.Resolve(s.templates, req.TemplateName, lang)
	if ok {
		subject, text, html = variant.Subject, variant.Text, variant.HTML
	}
	if subject == "" {
		subject = req.Subject
	}
	if text == "" {
		text = req.Text
	}
	if html == "" {
		html = req.HTML
	}

	if subject == "" && text == "" && html == "" {
		return "", "", "", stderrors.NewTemplateUnresolvedError(req.TemplateName)
	}
	return subject, text, html, nil
}

// buildRenderContext merges the request fields, custom data, the resolved
// user profile, and the app constants namespace. The profile is exposed
// both as a nested "user" object (handlebars dotted paths) and as
// flattened "user.*" keys (the simple engine does plain key lookup).
// Built fresh per request, never cached.
func buildRenderContext(req *request.NotificationRequest, profile *store.UserProfile, appName string) map[string]interface{} {
	ctx := make(map[string]interface{}, len(req.Raw())+len(req.CustomData)+8)

	for k, v := range req.Raw() {
		ctx[k] = v
	}
	for k, v := range req.CustomData {
		ctx[k] = v
	}

	if profile != nil {
		ctx["user"] = map[string]interface{}{
			"name":     profile.Name,
			"email":    profile.Email,
			"language": profile.Language,
		}
		ctx["user.name"] = profile.Name
		ctx["user.email"] = profile.Email
		ctx["user.language"] = profile.Language
	}

	ctx["appName"] = appName
	return ctx
}

// writeStatus merges status fields into the originating record. Best
// effort: a failure is logged and counted but never masks the primary
// outcome, so a poisoned record cannot loop the pipeline forever.
func (s *Service) writeStatus(ctx context.Context, log logger.Logger, collection, id string, fields store.Document) {
	if err := s.store.Update(ctx, collection, id, fields); err != nil {
		metrics.StatusWriteFailures.Inc()
		writeErr := stderrors.NewStatusWriteError(err)
		log.WithError(writeErr).Error("status write-back failed", map[string]interface{}{
			"status": fields["status"],
		})
	}
}
