package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/schemas"
	"github.com/jonathan/resume-matcher/internal/storage"
	"github.com/jonathan/resume-matcher/internal/types"
)

// Publisher sends a JSON message to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, v any) error
}

// HistorySaver stores a finished scan.
type HistorySaver interface {
	SaveHistory(ctx context.Context, entry types.HistoryEntry) (*types.HistoryEntry, error)
}

// Processor turns request messages into published results.
type Processor struct {
	engine      *pipeline.Engine
	publisher   Publisher
	resultQueue string
	objects     storage.ObjectStore
	history     HistorySaver
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithObjectStore enables requests that reference an uploaded file.
func WithObjectStore(objects storage.ObjectStore) ProcessorOption {
	return func(p *Processor) { p.objects = objects }
}

// WithHistory enables saving results for requests with save set.
func WithHistory(history HistorySaver) ProcessorOption {
	return func(p *Processor) { p.history = history }
}

// NewProcessor creates a processor that publishes results to resultQueue.
func NewProcessor(engine *pipeline.Engine, publisher Publisher, resultQueue string, opts ...ProcessorOption) *Processor {
	p := &Processor{engine: engine, publisher: publisher, resultQueue: resultQueue}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle is a HandlerFunc. Undecodable or invalid messages are rejected. Evaluation failures
// are published as error results and acknowledged. Transient failures are requeued once.
func (p *Processor) Handle(ctx context.Context, d Delivery) Outcome {
	var req Request
	if err := json.Unmarshal(d.Body, &req); err != nil {
		logging.Warn().Err(err).Str("message_id", d.MessageID).Msg("rejecting undecodable message")
		return Reject
	}

	ctx = logging.With(ctx, "request_id", req.ID)
	log := logging.Ctx(ctx)

	if err := req.Validate(); err != nil {
		log.Warn().Err(err).Msg("rejecting invalid message")
		if req.ID != "" {
			p.publish(ctx, Result{ID: req.ID, Error: err.Error(), ErrorKind: types.KindInput})
		}
		return Reject
	}

	result, err := p.process(ctx, &req)
	if err != nil {
		if ctx.Err() != nil || !d.Redelivered {
			log.Warn().Err(err).Bool("redelivered", d.Redelivered).Msg("requeueing after transient failure")
			return Requeue
		}
		result = errorResult(req.ID, err)
	}

	if err := p.publisher.Publish(ctx, p.resultQueue, result); err != nil {
		log.Error().Err(err).Msg("failed to publish result")
		return Requeue
	}

	log.Info().
		Str("error_kind", string(result.ErrorKind)).
		Bool("saved", result.HistoryID != nil).
		Msg("request processed")
	return Ack
}

// process evaluates req. Only transient failures are returned as errors; everything else is
// reported in the Result.
func (p *Processor) process(ctx context.Context, req *Request) (Result, error) {
	resumeText := req.ResumeText
	if req.ResumeObjectKey != "" {
		text, err := p.resolveResume(ctx, req)
		if err != nil {
			var inputErr *pipeline.InputError
			if errors.As(err, &inputErr) {
				return errorResult(req.ID, err), nil
			}
			return Result{}, err
		}
		resumeText = text
	}

	eval, err := p.engine.Evaluate(ctx, resumeText, req.JobDescription)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return errorResult(req.ID, err), nil
	}
	if err := checkEvaluation(eval); err != nil {
		return errorResult(req.ID, err), nil
	}

	result := Result{ID: req.ID, Evaluation: eval}
	if req.Save {
		p.save(ctx, req, &result)
	}
	return result, nil
}

func (p *Processor) resolveResume(ctx context.Context, req *Request) (string, error) {
	if p.objects == nil {
		return "", &pipeline.InputError{Field: "resume_object_key", Message: "object storage is not configured"}
	}

	obj, err := p.objects.Get(ctx, req.ResumeObjectKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", &pipeline.InputError{Field: "resume_object_key", Message: fmt.Sprintf("object %q not found", req.ResumeObjectKey)}
	}
	if err != nil {
		return "", err
	}

	contentType := req.ResumeContentType
	if contentType == "" {
		contentType = obj.ContentType
	}
	filename := req.ResumeFilename
	if filename == "" {
		filename = req.ResumeObjectKey
	}

	text, err := ingestion.ExtractText(filename, contentType, obj.Data)
	if err != nil {
		return "", &pipeline.InputError{Field: "resume_object_key", Message: err.Error()}
	}
	return text, nil
}

func (p *Processor) save(ctx context.Context, req *Request, result *Result) {
	if p.history == nil {
		result.Warning = "history not saved: no database configured"
		return
	}

	eval := result.Evaluation
	saved, err := p.history.SaveHistory(ctx, types.HistoryEntry{
		UserEmail:     req.UserEmail,
		MatchScore:    eval.Match.MatchPercentage,
		SemanticScore: eval.Semantic.Score,
		MissingSkills: eval.Match.MissingSkills,
		MatchedSkills: eval.Match.MatchedSkills,
		CreatedAt:     eval.CreatedAt,
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to save history")
		result.Warning = "history not saved: " + err.Error()
		return
	}
	result.HistoryID = &saved.ID
}

func (p *Processor) publish(ctx context.Context, result Result) {
	if err := p.publisher.Publish(ctx, p.resultQueue, result); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("failed to publish result")
	}
}

// checkEvaluation validates eval against the evaluation schema consumers of the result queue rely on.
func checkEvaluation(eval *types.Evaluation) error {
	data, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	if err := schemas.ValidateJSON(schemas.Evaluation, data); err != nil {
		return fmt.Errorf("evaluation does not match its schema: %w", err)
	}
	return nil
}

func errorResult(id string, err error) Result {
	return Result{ID: id, Error: err.Error(), ErrorKind: pipeline.KindOf(err)}
}
