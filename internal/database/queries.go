package database

import (
	"database/sql"
	"fmt"
	"time"
)

func (db *PgChatRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	res := db.conn.QueryRow(
		"INSERT INTO rooms (id, code, created_by, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, code, created_by, created_at",
		params.Id,
		params.Code,
		params.CreatedBy,
		time.Now().UTC(),
	)

	var r Room
	err := res.Scan(
		&r.Id,
		&r.Code,
		&r.CreatedBy,
		&r.CreatedAt,
	)

	return r, err
}

func (db *PgChatRepository) GetRoomByCode(code string) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT id, code, created_by, created_at FROM rooms "+
			"WHERE code = $1 LIMIT 1",
		code,
	)

	var r Room
	err := row.Scan(
		&r.Id,
		&r.Code,
		&r.CreatedBy,
		&r.CreatedAt,
	)

	return r, err
}

func (db *PgChatRepository) CreateParticipant(params CreateParticipantParams) (Participant, error) {
	res := db.conn.QueryRow(
		"INSERT INTO participants (id, room_id, user_name, language, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, room_id, user_name, language, created_at",
		params.Id,
		params.RoomId,
		params.UserName,
		params.Language,
		time.Now().UTC(),
	)

	var p Participant
	err := res.Scan(
		&p.Id,
		&p.RoomId,
		&p.UserName,
		&p.Language,
		&p.CreatedAt,
	)

	return p, err
}

func (db *PgChatRepository) GetParticipantById(id string) (Participant, error) {
	row := db.conn.QueryRow(
		"SELECT id, room_id, user_name, language, created_at FROM participants "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var p Participant
	err := row.Scan(
		&p.Id,
		&p.RoomId,
		&p.UserName,
		&p.Language,
		&p.CreatedAt,
	)

	return p, err
}

func (db *PgChatRepository) ListParticipants(roomId string) ([]Participant, error) {
	rows, err := db.conn.Query(
		"SELECT id, room_id, user_name, language, created_at FROM participants "+
			"WHERE room_id = $1 ORDER BY created_at",
		roomId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants = make([]Participant, 0)
	for rows.Next() {
		var p Participant
		if err = rows.Scan(&p.Id, &p.RoomId, &p.UserName, &p.Language, &p.CreatedAt); err != nil {
			break
		}

		participants = append(participants, p)
	}

	return participants, err
}

func (db *PgChatRepository) DeleteParticipant(id string) error {
	_, err := db.conn.Exec(
		"DELETE FROM participants WHERE id = $1",
		id,
	)

	return err
}

func (db *PgChatRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (id, room_id, sender_id, original_text, original_language, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) "+
			"RETURNING id, room_id, sender_id, original_text, original_language, created_at",
		params.Id,
		params.RoomId,
		params.SenderId,
		params.OriginalText,
		params.OriginalLanguage,
		time.Now().UTC(),
	)

	var m Message
	err := res.Scan(
		&m.Id,
		&m.RoomId,
		&m.SenderId,
		&m.OriginalText,
		&m.OriginalLanguage,
		&m.CreatedAt,
	)

	return m, err
}

func (db *PgChatRepository) GetMessageById(id string) (Message, error) {
	row := db.conn.QueryRow(
		"SELECT id, room_id, sender_id, original_text, original_language, created_at FROM messages "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var m Message
	err := row.Scan(
		&m.Id,
		&m.RoomId,
		&m.SenderId,
		&m.OriginalText,
		&m.OriginalLanguage,
		&m.CreatedAt,
	)

	return m, err
}

func (db *PgChatRepository) GetMessageHistory(roomId string) ([]MessageRecord, error) {
	query := `
		SELECT
				m.id,
				m.room_id,
				m.sender_id,
				m.original_text,
				m.original_language,
				m.created_at,
				p.user_name AS sender_name,
				t.id AS translation_id,
				t.language AS translation_language,
				t.translated_text
		FROM messages m
		LEFT JOIN participants p ON m.sender_id = p.id
		LEFT JOIN translations t ON t.message_id = m.id
		WHERE m.room_id = $1
		ORDER BY m.created_at, t.id;
`

	rows, err := db.conn.Query(query, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message history: %w", err)
	}
	defer rows.Close()

	var history = make([]MessageRecord, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			msg                 Message
			senderName          sql.NullString
			translationId       sql.NullInt64
			translationLanguage sql.NullString
			translatedText      sql.NullString
		)

		err := rows.Scan(
			&msg.Id,
			&msg.RoomId,
			&msg.SenderId,
			&msg.OriginalText,
			&msg.OriginalLanguage,
			&msg.CreatedAt,
			&senderName,
			&translationId,
			&translationLanguage,
			&translatedText,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		i, ok := index[msg.Id]
		if !ok {
			i = len(history)
			index[msg.Id] = i
			history = append(history, MessageRecord{
				Message:      msg,
				SenderName:   senderName.String,
				Translations: make([]Translation, 0),
			})
		}

		if translationId.Valid {
			history[i].Translations = append(history[i].Translations, Translation{
				Id:             int(translationId.Int64),
				MessageId:      msg.Id,
				Language:       translationLanguage.String,
				TranslatedText: translatedText.String,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return history, nil
}

func (db *PgChatRepository) CreateTranslation(params CreateTranslationParams) (Translation, error) {
	res := db.conn.QueryRow(
		"INSERT INTO translations (message_id, language, translated_text, created_at) "+
			"VALUES ($1, $2, $3, $4) "+
			"ON CONFLICT (message_id, language) DO NOTHING "+
			"RETURNING id, message_id, language, translated_text, created_at",
		params.MessageId,
		params.Language,
		params.TranslatedText,
		time.Now().UTC(),
	)

	var t Translation
	err := res.Scan(
		&t.Id,
		&t.MessageId,
		&t.Language,
		&t.TranslatedText,
		&t.CreatedAt,
	)

	return t, err
}

func (db *PgChatRepository) ListTranslations(messageId string) ([]Translation, error) {
	rows, err := db.conn.Query(
		"SELECT id, message_id, language, translated_text, created_at FROM translations "+
			"WHERE message_id = $1 ORDER BY id",
		messageId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var translations = make([]Translation, 0)
	for rows.Next() {
		var t Translation
		if err = rows.Scan(&t.Id, &t.MessageId, &t.Language, &t.TranslatedText, &t.CreatedAt); err != nil {
			break
		}

		translations = append(translations, t)
	}

	return translations, err
}
