package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      uuid,
                      start_time,
                      frequency,
                      config)
VALUES (?, CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    uuid,
    start_time,
    frequency,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    uuid,
    start_time,
    frequency,
    config
FROM sessions
ORDER BY start_time`

	upsertCandidateSQL = `
INSERT INTO candidates (session_id,
                        freq_low,
                        freq_high,
                        peak_power,
                        last_seen)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (session_id, freq_low, freq_high)
    DO UPDATE SET peak_power = excluded.peak_power,
                  last_seen  = excluded.last_seen`

	selectCandidatesSQL = `
SELECT
    freq_low,
    freq_high,
    peak_power,
    last_seen
FROM candidates
WHERE
    session_id = ?
ORDER BY freq_low, freq_high`

	insertSamplesSQL = `
    INSERT INTO samples (
        session_id,
        timestamp,
        frequency,
        latitude,
        longitude,
        heading,
        power,
        strength,
        measured
    )
    VALUES `

	selectSamplesSQL = `
SELECT
    timestamp,
    frequency,
    latitude,
    longitude,
    heading,
    power,
    strength,
    measured
FROM samples
WHERE
    session_id = ?
ORDER BY timestamp, id`
)
