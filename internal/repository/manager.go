package repository

import (
	"context"
	"database/sql"

	"go.mongodb.org/mongo-driver/mongo"
)

// Manager bundles the stores of one backend together with its connection.
type Manager interface {
	Users() UserStore
	Questions() QuestionStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type PostgresManager struct {
	db        *sql.DB
	users     *UserRepository
	questions *QuestionRepository
}

func NewPostgresManager(db *sql.DB) *PostgresManager {
	return &PostgresManager{
		db:        db,
		users:     NewUserRepository(db),
		questions: NewQuestionRepository(db),
	}
}

func (m *PostgresManager) Users() UserStore         { return m.users }
func (m *PostgresManager) Questions() QuestionStore { return m.questions }

func (m *PostgresManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *PostgresManager) Close(_ context.Context) error {
	return m.db.Close()
}

type MongoManager struct {
	client    *mongo.Client
	users     *MongoUserRepository
	questions *MongoQuestionRepository
}

func NewMongoManager(client *mongo.Client, database string) *MongoManager {
	db := client.Database(database)
	return &MongoManager{
		client:    client,
		users:     NewMongoUserRepository(db),
		questions: NewMongoQuestionRepository(db),
	}
}

func (m *MongoManager) Users() UserStore         { return m.users }
func (m *MongoManager) Questions() QuestionStore { return m.questions }

func (m *MongoManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

type MemoryManager struct {
	users     *MemoryUserRepository
	questions *MemoryQuestionRepository
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		users:     NewMemoryUserRepository(),
		questions: NewMemoryQuestionRepository(),
	}
}

func (m *MemoryManager) Users() UserStore              { return m.users }
func (m *MemoryManager) Questions() QuestionStore      { return m.questions }
func (m *MemoryManager) Ping(_ context.Context) error  { return nil }
func (m *MemoryManager) Close(_ context.Context) error { return nil }
