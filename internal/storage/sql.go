package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

//go:embed indexes.sql
var initIndexesSQL string

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      device,
                      board,
                      serial,
                      channel,
                      format,
                      frequency,
                      sample_rate,
                      bandwidth,
                      data_file,
                      config)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	finishSessionSQL = `
UPDATE sessions
SET end_time    = ?,
    sample_rate = ?,
    bandwidth   = ?,
    samples     = ?,
    overruns    = ?
WHERE id = ?`

	selectSessionColumns = `
SELECT 
    id, 
    start_time, 
    end_time,
    device, 
    board,
    serial,
    channel,
    format,
    frequency,
    sample_rate,
    bandwidth,
    data_file,
    samples,
    overruns,
    config 
FROM sessions`

	selectSessionSQL = selectSessionColumns + `
WHERE 
    id = ?`

	selectSessionsSQL = selectSessionColumns + `
ORDER BY start_time, id`

	insertTransferSQL = `
INSERT INTO transfers (
                       session_id,
                       seq,
                       timestamp,
                       samples,
                       flags,
                       status,
                       retries,
                       received_at)
VALUES `

	insertTransferPlaceholder = "(?, ?, ?, ?, ?, ?, ?, ?)"

	selectTransfersSQL = `
SELECT 
    seq,
    timestamp,
    samples,
    flags,
    status,
    retries,
    received_at
FROM transfers
WHERE 
    session_id = ?
    AND seq >= ?
    AND (? = 0 OR status <> 0)
ORDER BY seq
LIMIT ?`
)
