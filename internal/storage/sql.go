package storage

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    drone_serial TEXT,
    sdk_version  TEXT
);

CREATE TABLE IF NOT EXISTS states (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER  NOT NULL REFERENCES sessions (id),
    timestamp  DATETIME NOT NULL,
    roll       INTEGER  NOT NULL,
    pitch      INTEGER  NOT NULL,
    yaw        INTEGER  NOT NULL,
    height     INTEGER  NOT NULL,
    barometer  REAL     NOT NULL,
    battery    INTEGER  NOT NULL,
    tof        INTEGER  NOT NULL,
    motor_time INTEGER  NOT NULL,
    temp_low   INTEGER  NOT NULL,
    temp_high  INTEGER  NOT NULL,
    vgx        INTEGER  NOT NULL,
    vgy        INTEGER  NOT NULL,
    vgz        INTEGER  NOT NULL,
    agx        REAL     NOT NULL,
    agy        REAL     NOT NULL,
    agz        REAL     NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_states_session_time ON states (session_id, timestamp);
`

const (
	insertSessionSQL = `
INSERT INTO sessions (start_time,
                      drone_serial,
                      sdk_version)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    drone_serial,
    sdk_version
FROM sessions
WHERE
    id = ?`

	insertStateSQL = `
INSERT INTO states (session_id,
                    timestamp,
                    roll,
                    pitch,
                    yaw,
                    height,
                    barometer,
                    battery,
                    tof,
                    motor_time,
                    temp_low,
                    temp_high,
                    vgx,
                    vgy,
                    vgz,
                    agx,
                    agy,
                    agz)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectStatesSQL = `
SELECT
    timestamp,
    roll,
    pitch,
    yaw,
    height,
    barometer,
    battery,
    tof,
    motor_time,
    temp_low,
    temp_high,
    vgx,
    vgy,
    vgz,
    agx,
    agy,
    agz
FROM states
WHERE
    session_id = ?`
)
