package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/timetable-api/internal/models"
)

// RoomRepository reads the room inventory.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns every bookable room, lecture halls before labs.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT name, is_lab, capacity FROM rooms ORDER BY is_lab, name`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
