package storage

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time  DATETIME NOT NULL,
    socket_path TEXT NOT NULL,
    config      TEXT
);

CREATE TABLE IF NOT EXISTS frames (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL REFERENCES sessions (id),
    tick       INTEGER NOT NULL,
    timestamp  DATETIME NOT NULL,
    speed      INTEGER NOT NULL,
    altitude   INTEGER NOT NULL,
    raw        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_frames_session_tick ON frames (session_id, tick);
`

const (
	insertSessionSQL = `
INSERT INTO sessions (start_time,
                      socket_path,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    socket_path,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    socket_path,
    config
FROM sessions
ORDER BY start_time`

	insertFrameSQL = `
INSERT INTO frames (session_id,
                    tick,
                    timestamp,
                    speed,
                    altitude,
                    raw)
VALUES (?, ?, ?, ?, ?, ?)`

	selectFramesSQL = `
SELECT
    id,
    session_id,
    tick,
    timestamp,
    speed,
    altitude,
    raw
FROM frames
WHERE
    session_id = ?
ORDER BY tick`
)
