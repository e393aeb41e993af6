package messaging

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/carebridge/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

func (r *messageRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const messageCols = `id, patient_id, doctor_id, sender_type, body, client_key, read_at, created_at`

func (r *messageRepoPG) scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.PatientID, &m.DoctorID, &m.SenderType, &m.Body,
		&m.ClientKey, &m.ReadAt, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	return &m, err
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO messages (id, patient_id, doctor_id, sender_type, body, client_key)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		m.ID, m.PatientID, m.DoctorID, m.SenderType, m.Body, m.ClientKey).
		Scan(&m.CreatedAt)
}

func (r *messageRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	return r.scanMessage(r.conn(ctx).QueryRow(ctx,
		`SELECT `+messageCols+` FROM messages WHERE id = $1`, id))
}

func (r *messageRepoPG) GetByClientKey(ctx context.Context, patientID uuid.UUID, key string) (*Message, error) {
	return r.scanMessage(r.conn(ctx).QueryRow(ctx,
		`SELECT `+messageCols+` FROM messages WHERE patient_id = $1 AND client_key = $2`,
		patientID, key))
}

func (r *messageRepoPG) ListThread(ctx context.Context, patientID, doctorID uuid.UUID) ([]*Message, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+messageCols+` FROM messages
		 WHERE patient_id = $1 AND doctor_id = $2
		 ORDER BY created_at ASC, id ASC`, patientID, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.PatientID, &m.DoctorID, &m.SenderType, &m.Body,
			&m.ClientKey, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}

func (r *messageRepoPG) MarkRead(ctx context.Context, id uuid.UUID) (*Message, error) {
	// Conditional update keeps the first read timestamp on repeat calls.
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE messages SET read_at = NOW() WHERE id = $1 AND read_at IS NULL`, id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *messageRepoPG) MarkThreadRead(ctx context.Context, patientID, doctorID uuid.UUID, viewer SenderType) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE messages SET read_at = NOW()
		WHERE patient_id = $1 AND doctor_id = $2
		  AND sender_type <> $3 AND read_at IS NULL`,
		patientID, doctorID, viewer)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *messageRepoPG) DeleteThread(ctx context.Context, patientID, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM messages WHERE patient_id = $1 AND doctor_id = $2`, patientID, doctorID)
	return err
}

func (r *messageRepoPG) DoctorSummaries(ctx context.Context, doctorID uuid.UUID) ([]*ConversationSummary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.name, last.body, last.created_at, COALESCE(unread.n, 0)
		FROM patients p
		LEFT JOIN LATERAL (
			SELECT body, created_at FROM messages
			WHERE patient_id = p.id AND doctor_id = $1
			ORDER BY created_at DESC LIMIT 1
		) last ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS n FROM messages
			WHERE patient_id = p.id AND doctor_id = $1
			  AND sender_type = 'patient' AND read_at IS NULL
		) unread ON TRUE
		WHERE p.assigned_doctor_id = $1
		ORDER BY last.created_at DESC NULLS LAST, p.name`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ConversationSummary
	for rows.Next() {
		var s ConversationSummary
		var body *string
		if err := rows.Scan(&s.PatientID, &s.PatientName, &body, &s.LastMessageAt, &s.UnreadCount); err != nil {
			return nil, err
		}
		s.DoctorID = doctorID
		if body != nil {
			snippet := Snippet(*body)
			s.LastMessageSnippet = &snippet
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

func (r *messageRepoPG) PatientSummary(ctx context.Context, patientID, doctorID uuid.UUID) (*ConversationSummary, error) {
	var s ConversationSummary
	var body *string
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT p.id, p.name, last.body, last.created_at, COALESCE(unread.n, 0)
		FROM patients p
		LEFT JOIN LATERAL (
			SELECT body, created_at FROM messages
			WHERE patient_id = p.id AND doctor_id = $2
			ORDER BY created_at DESC LIMIT 1
		) last ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS n FROM messages
			WHERE patient_id = p.id AND doctor_id = $2
			  AND sender_type = 'doctor' AND read_at IS NULL
		) unread ON TRUE
		WHERE p.id = $1`, patientID, doctorID).
		Scan(&s.PatientID, &s.PatientName, &body, &s.LastMessageAt, &s.UnreadCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	s.DoctorID = doctorID
	if body != nil {
		snippet := Snippet(*body)
		s.LastMessageSnippet = &snippet
	}
	return &s, nil
}
