package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"query-genie/internal/apis/dtos"
	"query-genie/internal/constants"
	"query-genie/internal/models"
	"query-genie/internal/observability"
	"query-genie/internal/utils"
	"query-genie/pkg/dbmanager"
	"query-genie/pkg/envelope"
	"query-genie/pkg/llm"
	"query-genie/pkg/sqlguard"
)

const (
	cancelledMessage = "SQL execution cancelled by user"
	missingSQL       = "N/A"
)

// DatabaseManager is the part of dbmanager.Manager the pipeline uses.
type DatabaseManager interface {
	Connect(ctx context.Context, sessionID string, config dbmanager.ConnectionConfig) error
	Disconnect(ctx context.Context, sessionID string) error
	GetExecutor(sessionID string) (dbmanager.Executor, error)
	IsConnected(sessionID string) bool
	ActiveConnections() int
	Subscribe(listener dbmanager.ConnectionListener)
}

type StatementGenerator interface {
	Generate(ctx context.Context, req llm.GenerationRequest) (string, error)
}

type QueryService interface {
	Connect(ctx context.Context, sessionID string, req *dtos.ConnectRequest) (*dtos.ConnectResponse, uint32, error)
	Disconnect(ctx context.Context, sessionID string) (uint32, error)
	ProcessQuestion(ctx context.Context, sessionID string, req *dtos.AskRequest) (*dtos.AskResponse, uint32, error)
	ConfirmPendingStatement(ctx context.Context, sessionID string, req *dtos.ConfirmRequest) (*envelope.Envelope, uint32, error)
	ActiveSessions() int
}

// QuestionResult is the outcome of one pass through the pipeline. SQL is
// empty when no statement was generated.
type QuestionResult struct {
	SQL       string
	Statement *sqlguard.Statement
	Analysis  *sqlguard.Analysis
	Envelope  envelope.Envelope
}

type queryService struct {
	dbManager     DatabaseManager
	generator     StatementGenerator
	jwtService    utils.JWTService
	sessions      *SessionStore
	analyzer      *sqlguard.Analyzer
	defaultDBType string
	logger        *zap.Logger
}

func NewQueryService(
	dbManager DatabaseManager,
	generator StatementGenerator,
	jwtService utils.JWTService,
	sessions *SessionStore,
	defaultDBType string,
	logger *zap.Logger,
) QueryService {
	if defaultDBType == "" {
		defaultDBType = constants.DatabaseTypeMySQL
	}
	s := &queryService{
		dbManager:     dbManager,
		generator:     generator,
		jwtService:    jwtService,
		sessions:      sessions,
		analyzer:      sqlguard.NewAnalyzer(),
		defaultDBType: defaultDBType,
		logger:        logger.Named("query-service"),
	}
	dbManager.Subscribe(s.releaseSession)
	return s
}

// releaseSession drops a session's pipeline state, including any pending
// statement, once its database connection is gone. A session that has
// reconnected in the meantime is left alone.
func (s *queryService) releaseSession(sessionID string, status dbmanager.ConnectionStatus, reason string) {
	if status != dbmanager.StatusDisconnected || s.dbManager.IsConnected(sessionID) {
		return
	}
	s.sessions.Delete(sessionID)
	s.logger.Info("QueryService -> releaseSession -> session state released",
		zap.String("session_id", sessionID),
		zap.String("reason", reason))
}

// Connect replaces the session's database target. A new session id is issued
// when the caller has none.
func (s *queryService) Connect(ctx context.Context, sessionID string, req *dtos.ConnectRequest) (*dtos.ConnectResponse, uint32, error) {
	dbType := strings.ToLower(strings.TrimSpace(req.Type))
	if dbType == "" {
		dbType = s.defaultDBType
	}
	if !isSupportedDatabase(dbType) {
		return nil, http.StatusBadRequest, fmt.Errorf("unsupported database type: %s", req.Type)
	}

	port := strings.TrimSpace(req.Port)
	if port == "" {
		port = constants.GetDefaultPort(dbType)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	config := dbmanager.ConnectionConfig{
		Type:     dbType,
		Host:     req.Host,
		Port:     port,
		Username: req.User,
		Password: req.Password,
		Database: req.Database,
	}
	if err := s.dbManager.Connect(ctx, sessionID, config); err != nil {
		s.logger.Error("QueryService -> Connect -> failed to connect",
			zap.String("session_id", sessionID),
			zap.String("type", dbType),
			zap.String("host", req.Host),
			zap.Error(err))
		return nil, http.StatusBadRequest, fmt.Errorf("failed to connect to database: %w", err)
	}

	s.sessions.Reset(sessionID, models.Connection{
		Type:     dbType,
		Host:     req.Host,
		Port:     port,
		Username: req.User,
		Password: req.Password,
		Database: req.Database,
	})
	token, err := s.jwtService.GenerateToken(sessionID)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.Info("QueryService -> Connect -> database connected",
		zap.String("session_id", sessionID),
		zap.String("type", dbType),
		zap.String("database", req.Database))

	return &dtos.ConnectResponse{
		Database:     req.Database,
		Type:         dbType,
		SessionToken: token,
	}, http.StatusOK, nil
}

// Disconnect is idempotent: a session without a target is already disconnected.
func (s *queryService) Disconnect(ctx context.Context, sessionID string) (uint32, error) {
	if sessionID == "" {
		return http.StatusOK, nil
	}

	s.sessions.Delete(sessionID)
	if err := s.dbManager.Disconnect(ctx, sessionID); err != nil && !errors.Is(err, dbmanager.ErrConnectionNotFound) {
		return http.StatusInternalServerError, fmt.Errorf("failed to disconnect: %w", err)
	}
	s.logger.Info("QueryService -> Disconnect -> database disconnected", zap.String("session_id", sessionID))
	return http.StatusOK, nil
}

func (s *queryService) ProcessQuestion(ctx context.Context, sessionID string, req *dtos.AskRequest) (*dtos.AskResponse, uint32, error) {
	result, err := s.Process(ctx, sessionID, req.Question, ParseChatHistory(req.ChatHistory, s.logger))
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	text, err := FrameResponse(result.SQL, result.Envelope)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	return &dtos.AskResponse{
		Success:   true,
		Response:  text,
		Statement: statementInfo(result),
		Envelope:  result.Envelope,
	}, http.StatusOK, nil
}

// Process runs one question through generation, classification and, for safe
// statements, execution. The only error it returns is ErrNotConnected; every
// other failure is reported as an error envelope.
func (s *queryService) Process(ctx context.Context, sessionID, question string, history []llm.ChatMessage) (*QuestionResult, error) {
	executor, err := s.executor(sessionID)
	if err != nil {
		observability.ObserveQuestion(observability.OutcomeNotConnected)
		return nil, err
	}

	if check := sqlguard.ScreenText(question); check.IsSQLi {
		observability.IncrementSuspiciousQuestion()
		s.logger.Warn("QueryService -> Process -> question matches an injection fingerprint",
			zap.String("session_id", sessionID),
			zap.String("fingerprint", check.Fingerprint))
	}

	schemaText, err := executor.IntrospectSchema(ctx)
	if err != nil {
		s.logger.Error("QueryService -> Process -> schema introspection failed",
			zap.String("session_id", sessionID), zap.Error(err))
		observability.ObserveQuestion(observability.OutcomeSchemaError)
		return &QuestionResult{Envelope: envelope.NewError(err.Error())}, nil
	}

	start := time.Now()
	sql, err := s.generator.Generate(ctx, llm.GenerationRequest{
		Question:   question,
		SchemaText: schemaText,
		History:    history,
		DBType:     executor.DBType(),
	})
	observability.ObserveGeneration(time.Since(start))
	if err != nil {
		s.logger.Error("QueryService -> Process -> generation failed",
			zap.String("session_id", sessionID), zap.Error(err))
		observability.ObserveQuestion(observability.OutcomeGenerationError)
		return &QuestionResult{Envelope: envelope.NewError(err.Error())}, nil
	}

	stmt := sqlguard.Classify(sql)
	result := &QuestionResult{SQL: sql, Statement: &stmt}
	if analysis, err := s.analyzer.Analyze(sql); err == nil {
		result.Analysis = analysis
	} else {
		s.logger.Debug("QueryService -> Process -> statement could not be parsed", zap.Error(err))
	}

	if stmt.IsDangerous() {
		pending := models.NewPendingConfirmation(stmt)
		if err := s.sessions.SetPending(sessionID, pending); err != nil {
			s.logger.Warn("QueryService -> Process -> failed to store pending statement",
				zap.String("session_id", sessionID), zap.Error(err))
		}
		s.logger.Info("QueryService -> Process -> confirmation required",
			zap.String("session_id", sessionID),
			zap.Strings("keywords", keywordNames(stmt.DangerKeywords)))
		observability.ObserveQuestion(observability.OutcomeConfirmationRequired)
		result.Envelope = envelope.NewConfirmationRequired(sql, pending.Preview)
		return result, nil
	}

	result.Envelope = s.execute(ctx, executor, stmt)
	switch result.Envelope.Type() {
	case envelope.TypeSelect:
		observability.ObserveQuestion(observability.OutcomeSelect)
	case envelope.TypeStatus:
		observability.ObserveQuestion(observability.OutcomeStatus)
	default:
		observability.ObserveQuestion(observability.OutcomeExecutionError)
	}
	return result, nil
}

func (s *queryService) execute(ctx context.Context, executor dbmanager.Executor, stmt sqlguard.Statement) envelope.Envelope {
	start := time.Now()
	defer func() {
		observability.ObserveExecution(stmt.Kind.String(), time.Since(start))
	}()

	if stmt.Kind == sqlguard.KindSelect {
		res, err := executor.ExecuteQuery(ctx, stmt.Text)
		if err != nil {
			s.logger.Warn("QueryService -> execute -> query failed", zap.Error(err))
			return envelope.NormalizeSelect(nil, nil, err)
		}
		return envelope.NormalizeSelect(res.Columns, res.Rows, nil)
	}

	status, err := executor.ExecuteStatement(ctx, stmt.Text)
	if err != nil {
		s.logger.Warn("QueryService -> execute -> statement failed", zap.Error(err))
	}
	return envelope.NormalizeStatement(status, err)
}

// ConfirmPendingStatement resolves a confirmation. A cancel never touches the
// database. A confirm runs the statement as given, without classifying it
// again; an empty sql falls back to the session's pending statement.
func (s *queryService) ConfirmPendingStatement(ctx context.Context, sessionID string, req *dtos.ConfirmRequest) (*envelope.Envelope, uint32, error) {
	confirm := req.Confirm != nil && *req.Confirm
	if !confirm {
		if sessionID != "" {
			s.sessions.TakePending(sessionID)
		}
		observability.ObserveConfirmation(false)
		env := envelope.NewStatus(cancelledMessage, 0)
		return &env, http.StatusOK, nil
	}

	executor, err := s.executor(sessionID)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	sql := strings.TrimSpace(req.SQL)
	pending, hasPending := s.sessions.TakePending(sessionID)
	if sql == "" {
		if !hasPending {
			return nil, http.StatusBadRequest, ErrNoPendingStatement
		}
		sql = pending.SQL
	} else if hasPending && pending.SQL != sql {
		s.logger.Warn("QueryService -> ConfirmPendingStatement -> confirmed statement differs from pending one",
			zap.String("session_id", sessionID))
	}

	observability.ObserveConfirmation(true)
	start := time.Now()
	status, err := executor.ExecuteStatement(ctx, sql)
	observability.ObserveExecution(sqlguard.KindNonSelect.String(), time.Since(start))
	if err != nil {
		s.logger.Warn("QueryService -> ConfirmPendingStatement -> statement failed",
			zap.String("session_id", sessionID), zap.Error(err))
	} else {
		s.logger.Info("QueryService -> ConfirmPendingStatement -> statement executed",
			zap.String("session_id", sessionID), zap.String("status", status))
	}

	env := envelope.NormalizeStatement(status, err)
	return &env, http.StatusOK, nil
}

func (s *queryService) ActiveSessions() int {
	return s.dbManager.ActiveConnections()
}

func (s *queryService) executor(sessionID string) (dbmanager.Executor, error) {
	if sessionID == "" {
		return nil, ErrNotConnected
	}
	executor, err := s.dbManager.GetExecutor(sessionID)
	if err != nil {
		if !errors.Is(err, dbmanager.ErrConnectionNotFound) {
			s.logger.Warn("QueryService -> executor -> connection unavailable",
				zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil, ErrNotConnected
	}
	return executor, nil
}

// FrameResponse renders the text form returned to chat clients. Confirmation
// requests are returned as the bare envelope since it already carries the SQL.
func FrameResponse(sql string, env envelope.Envelope) (string, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	if env.Type() == envelope.TypeConfirmationRequired {
		return string(body), nil
	}
	if sql == "" {
		sql = missingSQL
	}
	return fmt.Sprintf("SQL: `%s`\nOutput: %s", sql, body), nil
}

// ParseChatHistory converts client messages, dropping unknown roles.
func ParseChatHistory(messages []dtos.ChatMessage, logger *zap.Logger) []llm.ChatMessage {
	history := make([]llm.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		role, ok := llm.ParseRole(msg.Role)
		if !ok {
			logger.Warn("ParseChatHistory -> skipping message with unknown role", zap.String("role", msg.Role))
			continue
		}
		history = append(history, llm.ChatMessage{Role: role, Content: msg.Content})
	}
	return history
}

func statementInfo(result *QuestionResult) *dtos.StatementInfo {
	if result.Statement == nil {
		return nil
	}
	info := &dtos.StatementInfo{
		SQL:            result.SQL,
		Kind:           result.Statement.Kind.String(),
		DangerKeywords: keywordNames(result.Statement.DangerKeywords),
	}
	if result.Statement.IsDangerous() {
		info.Warning = result.Statement.Impacts()
	}
	if result.Analysis != nil {
		info.StatementType = result.Analysis.StatementType
		info.Tables = result.Analysis.Tables
	}
	return info
}

func keywordNames(keywords []sqlguard.DangerKeyword) []string {
	names := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		names = append(names, string(kw))
	}
	return names
}

func isSupportedDatabase(dbType string) bool {
	switch dbType {
	case constants.DatabaseTypeMySQL,
		constants.DatabaseTypePostgreSQL,
		constants.DatabaseTypeYugabyteDB,
		constants.DatabaseTypeClickhouse:
		return true
	}
	return false
}
