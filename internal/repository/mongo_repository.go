package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qna/internal/entity"
)

const (
	UsersCollection     = "users"
	QuestionsCollection = "questions"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(UsersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *entity.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var u entity.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

type MongoQuestionRepository struct {
	coll *mongo.Collection
}

func NewMongoQuestionRepository(db *mongo.Database) *MongoQuestionRepository {
	return &MongoQuestionRepository{coll: db.Collection(QuestionsCollection)}
}

func (r *MongoQuestionRepository) Create(ctx context.Context, q *entity.Question) error {
	doc := *q
	doc.Answers = nonNilAnswers(q.Answers)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (r *MongoQuestionRepository) List(ctx context.Context) ([]entity.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}

	var questions []entity.Question
	if err := cur.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

func (r *MongoQuestionRepository) FindByID(ctx context.Context, id string) (*entity.Question, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var q entity.Question
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find question: %w", err)
	}
	return &q, nil
}

func (r *MongoQuestionRepository) AddAnswer(ctx context.Context, id string, answer entity.Answer) error {
	return r.update(ctx, id, bson.M{"$push": bson.M{"answers": answer}})
}

func (r *MongoQuestionRepository) Like(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{"$inc": bson.M{"likes": 1}})
}

func (r *MongoQuestionRepository) update(ctx context.Context, id string, change bson.M) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := r.coll.UpdateByID(ctx, id, change)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureMongoIndexes creates the unique username index that backs
// ErrDuplicateUsername and the createdAt index used by List.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = db.Collection(QuestionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create questions index: %w", err)
	}
	return nil
}
