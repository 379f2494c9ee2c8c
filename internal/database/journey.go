package repository

import (
	"CoverBot/bot/journey"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Save upserts a journey state by {product, id}.
func (m *MongoDB) Save(ctx context.Context, state *journey.State) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(m.journeys)

	filter := bson.D{{Key: "product", Value: state.Product}, {Key: "id", Value: state.ID}}
	update := bson.D{{Key: "$set", Value: state}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert error: %w", err)
	}
	return nil
}

// Load returns nil without an error when the journey does not exist.
func (m *MongoDB) Load(ctx context.Context, product, id string) (*journey.State, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(m.journeys)

	filter := bson.D{{Key: "product", Value: product}, {Key: "id", Value: id}}

	var state journey.State
	err = collection.FindOne(ctx, filter).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	if state.Data == nil {
		state.Data = make(map[string]any)
	}

	return &state, nil
}

func (m *MongoDB) Delete(ctx context.Context, product, id string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(m.journeys)

	filter := bson.D{{Key: "product", Value: product}, {Key: "id", Value: id}}

	_, err = collection.DeleteOne(ctx, filter)
	return err
}
