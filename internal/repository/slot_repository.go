package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/gymflow/training-service/internal/schedule"
)

// SlotRepository is the persistence boundary consumed by the scheduling
// service.  Save must detect stale writes: updating a slot whose stored
// version differs from the one loaded fails with
// schedule.ErrConcurrentModification, which makes the read-modify-write
// cycles of enroll/withdraw effectively serialized per slot.
type SlotRepository interface {
    // FindByID loads a slot with its roster.  Soft-deleted and unknown ids
    // fail with schedule.ErrSlotNotFound.
    FindByID(ctx context.Context, id uint64) (*schedule.Slot, error)
    // FindByHallAndDate lists the live slots scheduled in a hall on a
    // calendar date, rosters included, in start-time order.
    FindByHallAndDate(ctx context.Context, hallNumber int, date time.Time) ([]schedule.Slot, error)
    // Save inserts the slot when its ID is zero, otherwise performs a
    // compare-and-swap update keyed on Slot.Version.  On success the slot's
    // ID/Version reflect the persisted state.
    Save(ctx context.Context, slot *schedule.Slot) error
    // DeleteByID soft-deletes the slot and hard-deletes its roster rows.
    // It reports whether a live slot was actually removed.
    DeleteByID(ctx context.Context, id uint64) (bool, error)
    // FindByParticipant lists the live slots the participant is enrolled in
    // or waitlisted for, from the given date onward, in date then
    // start-time order.
    FindByParticipant(ctx context.Context, participantID uint64, from time.Time) ([]schedule.Slot, error)
}

// SlotRepo is the MySQL implementation of SlotRepository.  A slot spans
// three tables: training_slots (interval, hall, capacity, version),
// slot_trainers and slot_participants (roster and waitlist rows ordered by
// position).  Every write runs in a single transaction and bumps the
// version column, so concurrent writers lose the CAS and retry.
type SlotRepo struct {
    db *sql.DB
}

// NewSlotRepo returns a SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying handle so callers can share the pool with the
// other repositories.
func (r *SlotRepo) DB() *sql.DB { return r.db }

// FindByID implements SlotRepository.
func (r *SlotRepo) FindByID(ctx context.Context, id uint64) (*schedule.Slot, error) {
    const q = `SELECT id, training_type_id, hall_number, date, start_min, end_min, capacity, version
               FROM training_slots WHERE id = ? AND deleted_at IS NULL`
    var s schedule.Slot
    // parseTime=true in the DSN makes DATE columns scan as time.Time.
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.TrainingTypeID, &s.HallNumber, &s.Date, &s.StartMin, &s.EndMin, &s.Capacity, &s.Version,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, schedule.ErrSlotNotFound
        }
        return nil, err
    }
    if err := r.loadDetails(ctx, []*schedule.Slot{&s}); err != nil {
        return nil, err
    }
    return &s, nil
}

// FindByHallAndDate implements SlotRepository.
func (r *SlotRepo) FindByHallAndDate(ctx context.Context, hallNumber int, date time.Time) ([]schedule.Slot, error) {
    const q = `SELECT id, training_type_id, hall_number, date, start_min, end_min, capacity, version
               FROM training_slots
               WHERE hall_number = ? AND date = ? AND deleted_at IS NULL
               ORDER BY start_min`
    rows, err := r.db.QueryContext(ctx, q, hallNumber, date.Format(schedule.DateLayout))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var slots []schedule.Slot
    for rows.Next() {
        var s schedule.Slot
        if err := rows.Scan(&s.ID, &s.TrainingTypeID, &s.HallNumber, &s.Date, &s.StartMin, &s.EndMin, &s.Capacity, &s.Version); err != nil {
            return nil, err
        }
        slots = append(slots, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    refs := make([]*schedule.Slot, len(slots))
    for i := range slots {
        refs[i] = &slots[i]
    }
    if err := r.loadDetails(ctx, refs); err != nil {
        return nil, err
    }
    return slots, nil
}

// Save implements SlotRepository.
func (r *SlotRepo) Save(ctx context.Context, slot *schedule.Slot) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if slot.ID == 0 {
        err = r.insertTx(ctx, tx, slot)
    } else {
        err = r.updateTx(ctx, tx, slot)
    }
    if err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

func (r *SlotRepo) insertTx(ctx context.Context, tx *sql.Tx, slot *schedule.Slot) error {
    const q = `INSERT INTO training_slots (training_type_id, hall_number, date, start_min, end_min, capacity, version)
               VALUES (?, ?, ?, ?, ?, ?, 1)`
    res, err := tx.ExecContext(ctx, q,
        slot.TrainingTypeID, slot.HallNumber, slot.Date.Format(schedule.DateLayout),
        slot.StartMin, slot.EndMin, slot.Capacity,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    slot.ID = uint64(id)
    slot.Version = 1
    return r.writeDetailsTx(ctx, tx, slot)
}

func (r *SlotRepo) updateTx(ctx context.Context, tx *sql.Tx, slot *schedule.Slot) error {
    // CAS on the version column: a stale writer affects zero rows.
    const q = `UPDATE training_slots
               SET training_type_id = ?, hall_number = ?, date = ?, start_min = ?, end_min = ?,
                   capacity = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND version = ? AND deleted_at IS NULL`
    res, err := tx.ExecContext(ctx, q,
        slot.TrainingTypeID, slot.HallNumber, slot.Date.Format(schedule.DateLayout),
        slot.StartMin, slot.EndMin, slot.Capacity,
        slot.ID, slot.Version,
    )
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // Distinguish "slot gone" from "version moved on".
        var one int
        err := tx.QueryRowContext(ctx,
            `SELECT 1 FROM training_slots WHERE id = ? AND deleted_at IS NULL LIMIT 1`, slot.ID,
        ).Scan(&one)
        if errors.Is(err, sql.ErrNoRows) {
            return schedule.ErrSlotNotFound
        }
        if err != nil {
            return err
        }
        return schedule.ErrConcurrentModification
    }
    slot.Version++
    // Rewrite trainer and roster rows wholesale; the row counts are tiny
    // and a full rewrite keeps positions authoritative.
    if _, err := tx.ExecContext(ctx, `DELETE FROM slot_trainers WHERE slot_id = ?`, slot.ID); err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx, `DELETE FROM slot_participants WHERE slot_id = ?`, slot.ID); err != nil {
        return err
    }
    return r.writeDetailsTx(ctx, tx, slot)
}

// writeDetailsTx inserts trainer and roster rows for the slot.  Positions
// record insertion order so FIFO promotion survives reloads.
func (r *SlotRepo) writeDetailsTx(ctx context.Context, tx *sql.Tx, slot *schedule.Slot) error {
    if len(slot.TrainerIDs) > 0 {
        query := `INSERT INTO slot_trainers (slot_id, trainer_id) VALUES `
        args := make([]interface{}, 0, len(slot.TrainerIDs)*2)
        for i, tid := range slot.TrainerIDs {
            if i > 0 {
                query += ","
            }
            query += "(?, ?)"
            args = append(args, slot.ID, tid)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }
    total := len(slot.Roster.Participants) + len(slot.Roster.Waitlist)
    if total == 0 {
        return nil
    }
    query := `INSERT INTO slot_participants (slot_id, participant_id, waitlisted, position) VALUES `
    args := make([]interface{}, 0, total*4)
    appendRow := func(i int, pid uint64, waitlisted bool, pos int) {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?)"
        args = append(args, slot.ID, pid, waitlisted, pos)
    }
    n := 0
    for pos, pid := range slot.Roster.Participants {
        appendRow(n, pid, false, pos)
        n++
    }
    for pos, pid := range slot.Roster.Waitlist {
        appendRow(n, pid, true, pos)
        n++
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// DeleteByID implements SlotRepository.
func (r *SlotRepo) DeleteByID(ctx context.Context, id uint64) (bool, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return false, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    res, err := tx.ExecContext(ctx,
        `UPDATE training_slots SET deleted_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL`, id)
    if err != nil {
        return false, err
    }
    n, _ := res.RowsAffected()
    if n == 0 {
        return false, nil
    }
    // Removing a slot cascades removal of its roster.
    if _, err := tx.ExecContext(ctx, `DELETE FROM slot_participants WHERE slot_id = ?`, id); err != nil {
        return false, err
    }
    if _, err := tx.ExecContext(ctx, `DELETE FROM slot_trainers WHERE slot_id = ?`, id); err != nil {
        return false, err
    }
    if err := tx.Commit(); err != nil {
        return false, err
    }
    committed = true
    return true, nil
}

// FindByParticipant implements SlotRepository.
func (r *SlotRepo) FindByParticipant(ctx context.Context, participantID uint64, from time.Time) ([]schedule.Slot, error) {
    const q = `SELECT s.id, s.training_type_id, s.hall_number, s.date, s.start_min, s.end_min, s.capacity, s.version
               FROM training_slots s
               JOIN slot_participants p ON p.slot_id = s.id
               WHERE p.participant_id = ? AND s.date >= ? AND s.deleted_at IS NULL
               ORDER BY s.date, s.start_min`
    rows, err := r.db.QueryContext(ctx, q, participantID, from.Format(schedule.DateLayout))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var slots []schedule.Slot
    for rows.Next() {
        var s schedule.Slot
        if err := rows.Scan(&s.ID, &s.TrainingTypeID, &s.HallNumber, &s.Date, &s.StartMin, &s.EndMin, &s.Capacity, &s.Version); err != nil {
            return nil, err
        }
        slots = append(slots, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    refs := make([]*schedule.Slot, len(slots))
    for i := range slots {
        refs[i] = &slots[i]
    }
    if err := r.loadDetails(ctx, refs); err != nil {
        return nil, err
    }
    return slots, nil
}

// loadDetails populates trainer lists and rosters for the given slots with
// one batched query per table.
func (r *SlotRepo) loadDetails(ctx context.Context, slots []*schedule.Slot) error {
    if len(slots) == 0 {
        return nil
    }
    index := make(map[uint64]*schedule.Slot, len(slots))
    ids := make([]interface{}, 0, len(slots))
    placeholders := make([]string, 0, len(slots))
    for _, s := range slots {
        index[s.ID] = s
        ids = append(ids, s.ID)
        placeholders = append(placeholders, "?")
    }
    in := strings.Join(placeholders, ",")

    trows, err := r.db.QueryContext(ctx,
        `SELECT slot_id, trainer_id FROM slot_trainers WHERE slot_id IN (`+in+`) ORDER BY slot_id, trainer_id`,
        ids...)
    if err != nil {
        return err
    }
    defer trows.Close()
    for trows.Next() {
        var sid, tid uint64
        if err := trows.Scan(&sid, &tid); err != nil {
            return err
        }
        if s, ok := index[sid]; ok {
            s.TrainerIDs = append(s.TrainerIDs, tid)
        }
    }
    if err := trows.Err(); err != nil {
        return err
    }

    prows, err := r.db.QueryContext(ctx,
        `SELECT slot_id, participant_id, waitlisted FROM slot_participants
         WHERE slot_id IN (`+in+`) ORDER BY slot_id, waitlisted, position`,
        ids...)
    if err != nil {
        return err
    }
    defer prows.Close()
    for prows.Next() {
        var sid, pid uint64
        var waitlisted bool
        if err := prows.Scan(&sid, &pid, &waitlisted); err != nil {
            return err
        }
        s, ok := index[sid]
        if !ok {
            continue
        }
        if waitlisted {
            s.Roster.Waitlist = append(s.Roster.Waitlist, pid)
        } else {
            s.Roster.Participants = append(s.Roster.Participants, pid)
        }
    }
    return prows.Err()
}
