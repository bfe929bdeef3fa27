package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/studypath/studypath-api/internal/dto"
	"github.com/studypath/studypath-api/internal/genai"
	"github.com/studypath/studypath-api/internal/models"
)

const (
	advisorKindRecommendations = "recommendations"
	advisorKindLearningPattern = "learning_pattern"
	advisorKindStudyPlan       = "study_plan"
	advisorKindTest            = "test"
)

const (
	msgMissingKeyRecommendations = "Se requiere una API key de Google AI para usar esta funcionalidad. Configúrala en la sección de configuración de IA."
	msgMissingKey                = "Se requiere una API key de Google AI para usar esta funcionalidad."
	msgMissingKeyTest            = "Se requiere una API key de Google AI para usar esta funcionalidad. Por favor, configúrala en la sección de configuración de IA."
	msgRecommendationsDisabled   = "Las recomendaciones de IA están desactivadas. Actívalas en la sección de configuración de IA."

	msgRecommendationsFailed = "No se pudieron generar recomendaciones en este momento. Por favor, intenta más tarde."
	msgLearningPatternFailed = "No se pudo analizar el patrón de aprendizaje en este momento. Por favor, intenta más tarde."
	msgStudyPlanFailed       = "No se pudo generar el plan de estudio en este momento. Por favor, intenta más tarde."
)

// AdvisorCredentials carries the credential and model preference used for
// one advisor call.
type AdvisorCredentials struct {
	APIKey                string
	Model                 string
	EnableRecommendations bool
}

type ownedPensumLoader interface {
	Owned(ctx context.Context, actor Actor, id string) (*models.Pensum, error)
}

type credentialResolver interface {
	Credentials(ctx context.Context, userID string) (AdvisorCredentials, error)
}

type advisorRecorder interface {
	RecordAdvisorCall(kind, outcome string, duration time.Duration)
}

// AdvisorService builds prompts from a curriculum and the student's progress
// and turns generator failures into fixed messages.
type AdvisorService struct {
	pensums   ownedPensumLoader
	creds     credentialResolver
	generator genai.Generator
	metrics   advisorRecorder
	logger    *zap.Logger
}

// NewAdvisorService constructs an AdvisorService.
func NewAdvisorService(pensums ownedPensumLoader, creds credentialResolver, generator genai.Generator, metrics advisorRecorder, logger *zap.Logger) *AdvisorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = (*MetricsService)(nil)
	}
	return &AdvisorService{pensums: pensums, creds: creds, generator: generator, metrics: metrics, logger: logger}
}

// Recommendations suggests next subjects for an owned curriculum.
func (s *AdvisorService) Recommendations(ctx context.Context, actor Actor, pensumID string) (*dto.AdvisorResponse, error) {
	p, creds, err := s.prepare(ctx, actor, pensumID)
	if err != nil {
		return nil, err
	}
	if creds.APIKey == "" {
		return s.skipped(advisorKindRecommendations, msgMissingKeyRecommendations), nil
	}
	if !creds.EnableRecommendations {
		return s.skipped(advisorKindRecommendations, msgRecommendationsDisabled), nil
	}
	return s.generate(ctx, advisorKindRecommendations, creds, RecommendationsPrompt(p, p.Progress), msgRecommendationsFailed), nil
}

// LearningPattern analyses the student's status map.
func (s *AdvisorService) LearningPattern(ctx context.Context, actor Actor, pensumID string) (*dto.AdvisorResponse, error) {
	p, creds, err := s.prepare(ctx, actor, pensumID)
	if err != nil {
		return nil, err
	}
	if creds.APIKey == "" {
		return s.skipped(advisorKindLearningPattern, msgMissingKey), nil
	}
	return s.generate(ctx, advisorKindLearningPattern, creds, LearningPatternPrompt(p.Progress), msgLearningPatternFailed), nil
}

// StudyPlan proposes a plan for the next academic period.
func (s *AdvisorService) StudyPlan(ctx context.Context, actor Actor, pensumID string) (*dto.AdvisorResponse, error) {
	p, creds, err := s.prepare(ctx, actor, pensumID)
	if err != nil {
		return nil, err
	}
	if creds.APIKey == "" {
		return s.skipped(advisorKindStudyPlan, msgMissingKey), nil
	}
	return s.generate(ctx, advisorKindStudyPlan, creds, StudyPlanPrompt(p, p.Progress), msgStudyPlanFailed), nil
}

// Test checks connectivity with the configured model.
func (s *AdvisorService) Test(ctx context.Context, actor Actor, name string) (*dto.AdvisorResponse, error) {
	creds, err := s.creds.Credentials(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if creds.APIKey == "" {
		return s.skipped(advisorKindTest, msgMissingKeyTest), nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = actor.DisplayName
	}

	start := time.Now()
	resp, err := s.generator.Generate(ctx, genai.GenerateRequest{APIKey: creds.APIKey, Model: creds.Model, Prompt: TestPrompt(name)})
	if err != nil {
		s.metrics.RecordAdvisorCall(advisorKindTest, OutcomeFailure, time.Since(start))
		s.logger.Warn("advisor connection test failed", zap.String("user_id", actor.UserID), zap.Error(err))
		return &dto.AdvisorResponse{Text: "Error conectando con el modelo: " + connectionFailure(err), Fallback: true}, nil
	}
	s.metrics.RecordAdvisorCall(advisorKindTest, OutcomeSuccess, time.Since(start))
	return &dto.AdvisorResponse{Text: resp.Text, Model: resp.Model}, nil
}

// connectionFailure maps generator errors to fixed user-facing text. Raw
// error strings may carry request details and are only logged.
func connectionFailure(err error) string {
	switch {
	case errors.Is(err, genai.ErrTimeout):
		return "tiempo de espera agotado."
	case errors.Is(err, genai.ErrUnavailable):
		return "el servicio no está disponible."
	case errors.Is(err, genai.ErrUpstream):
		return "el servicio respondió con un error."
	case errors.Is(err, genai.ErrEmptyResponse):
		return "el modelo no devolvió ninguna respuesta."
	case errors.Is(err, genai.ErrMissingAPIKey):
		return "falta la API key."
	default:
		return "error inesperado."
	}
}

func (s *AdvisorService) prepare(ctx context.Context, actor Actor, pensumID string) (*models.Pensum, AdvisorCredentials, error) {
	p, err := s.pensums.Owned(ctx, actor, pensumID)
	if err != nil {
		return nil, AdvisorCredentials{}, err
	}
	creds, err := s.creds.Credentials(ctx, actor.UserID)
	if err != nil {
		return nil, AdvisorCredentials{}, err
	}
	return p, creds, nil
}

func (s *AdvisorService) skipped(kind, message string) *dto.AdvisorResponse {
	s.metrics.RecordAdvisorCall(kind, OutcomeSkipped, 0)
	return &dto.AdvisorResponse{Text: message, Fallback: true}
}

func (s *AdvisorService) generate(ctx context.Context, kind string, creds AdvisorCredentials, prompt, fallback string) *dto.AdvisorResponse {
	start := time.Now()
	resp, err := s.generator.Generate(ctx, genai.GenerateRequest{APIKey: creds.APIKey, Model: creds.Model, Prompt: prompt})
	if err != nil {
		s.metrics.RecordAdvisorCall(kind, OutcomeFailure, time.Since(start))
		s.logger.Error("advisor call failed", zap.String("kind", kind), zap.Error(err))
		return &dto.AdvisorResponse{Text: fallback, Fallback: true}
	}
	s.metrics.RecordAdvisorCall(kind, OutcomeSuccess, time.Since(start))
	return &dto.AdvisorResponse{Text: resp.Text, Model: resp.Model}
}

// RecommendationsPrompt embeds the curriculum identity and the approved and
// in-progress codes.
func RecommendationsPrompt(p *models.Pensum, progress models.Progress) string {
	return fmt.Sprintf(`Como consejero académico, analiza el progreso del estudiante en su plan de estudios y proporciona recomendaciones personalizadas.

Plan de estudios: %s - %s
Facultad: %s

Asignaturas aprobadas: %s
Asignaturas en curso: %s

Basándote en el progreso actual del estudiante:
1. Recomienda cuáles deberían ser las próximas asignaturas a cursar
2. Identifica áreas donde el estudiante podría necesitar reforzamiento
3. Sugiere estrategias para optimizar su progreso académico

Proporciona recomendaciones concisas y personalizadas en forma de lista.`,
		p.Career, p.Title, p.Faculty,
		strings.Join(progress.CodesWith(models.StatusApproved), ", "),
		strings.Join(progress.CodesWith(models.StatusInProgress), ", "))
}

// LearningPatternPrompt embeds the raw status map.
func LearningPatternPrompt(progress models.Progress) string {
	if progress == nil {
		progress = models.Progress{}
	}
	raw, _ := json.Marshal(progress)
	return fmt.Sprintf(`Como experto en análisis de datos educativos, examina el siguiente progreso académico
y proporciona un análisis sobre los patrones de aprendizaje del estudiante.

Progreso académico: %s

Analiza:
1. Ritmo de avance académico
2. Áreas de fortaleza y debilidad
3. Posibles estrategias para mejorar el rendimiento académico

Proporciona un análisis conciso en forma de párrafos cortos.`, raw)
}

type planSubject struct {
	Code          string        `json:"code"`
	Name          string        `json:"name"`
	Credits       int           `json:"credits"`
	Status        models.Status `json:"status"`
	Prerequisites []string      `json:"prerequisites"`
}

type planTerm struct {
	Number   int           `json:"number"`
	Name     string        `json:"name"`
	Subjects []planSubject `json:"subjects"`
}

// StudyPlanPrompt embeds every term with each subject's resolved status.
func StudyPlanPrompt(p *models.Pensum, progress models.Progress) string {
	terms := make([]planTerm, 0, len(p.Terms))
	for _, term := range p.Terms {
		pt := planTerm{Number: term.Number, Name: term.Name, Subjects: make([]planSubject, 0, len(term.Subjects))}
		for _, subject := range term.Subjects {
			prereqs := []string(subject.Prerequisites)
			if prereqs == nil {
				prereqs = []string{}
			}
			pt.Subjects = append(pt.Subjects, planSubject{
				Code:          subject.Code,
				Name:          subject.Name,
				Credits:       subject.Credits,
				Status:        progress.StatusOf(subject.Code),
				Prerequisites: prereqs,
			})
		}
		terms = append(terms, pt)
	}
	raw, _ := json.Marshal(terms)
	return fmt.Sprintf(`Como planificador académico, genera un plan de estudio personalizado para el próximo período académico
basado en el progreso actual del estudiante.

Datos del plan de estudios: %s

Considerando:
1. Asignaturas pendientes y sus prerrequisitos
2. Distribución óptima de créditos académicos
3. Secuencia lógica de materias

Genera un plan de estudio recomendado para el próximo período académico, indicando:
1. Asignaturas a cursar
2. Justificación de cada selección
3. Total de créditos recomendados

Proporciona el plan en formato estructurado y fácil de leer.`, raw)
}

// TestPrompt is the connection-test greeting.
func TestPrompt(name string) string {
	return fmt.Sprintf("Hola Gemini, mi nombre es %s y estoy usando StudyPath para seguimiento académico. Dame un consejo breve para tener éxito en mis estudios.", name)
}
