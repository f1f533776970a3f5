package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"DonorLink/entity"
)

// InsertUser stores a new user and returns the assigned id.
func (m *MongoDB) InsertUser(user entity.User) (primitive.ObjectID, error) {
	connection, err := m.connect()
	if err != nil {
		return primitive.NilObjectID, err
	}
	defer m.disconnect(connection)

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	collection := connection.Database(m.database).Collection(usersCollection)
	result, err := collection.InsertOne(m.ctx, user)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("mongodb insert user: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("mongodb insert user: unexpected id type %T", result.InsertedID)
	}
	return id, nil
}

// GetUserByID resolves a user by id. Returns (nil, nil) when no user exists.
func (m *MongoDB) GetUserByID(id primitive.ObjectID) (*entity.User, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)
	filter := bson.D{{Key: "_id", Value: id}}

	var user entity.User
	err = collection.FindOne(m.ctx, filter).Decode(&user)
	if err != nil {
		return nil, m.findError(err)
	}

	return &user, nil
}

// GetUserByEmail resolves a user by email. Returns (nil, nil) when no user
// exists.
func (m *MongoDB) GetUserByEmail(email string) (*entity.User, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)
	filter := bson.D{{Key: "email", Value: email}}

	var user entity.User
	err = collection.FindOne(m.ctx, filter).Decode(&user)
	if err != nil {
		return nil, m.findError(err)
	}

	return &user, nil
}

// ListUsersByRole returns the user directory, optionally filtered by role.
func (m *MongoDB) ListUsersByRole(role string) ([]entity.User, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)

	filter := bson.D{}
	if role != "" {
		filter = bson.D{{Key: "role", Value: role}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find users: %w", err)
	}
	defer cursor.Close(m.ctx)

	var users []entity.User
	if err = cursor.All(m.ctx, &users); err != nil {
		return nil, fmt.Errorf("mongodb decode users: %w", err)
	}

	return users, nil
}

// TouchLastLogin stamps the user's last login time.
func (m *MongoDB) TouchLastLogin(id primitive.ObjectID) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)
	update := bson.M{"$set": bson.M{"last_login": time.Now().UTC()}}

	_, err = collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return fmt.Errorf("mongodb touch last login: %w", err)
	}
	return nil
}
