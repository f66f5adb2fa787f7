package source

// FileID identifies a source file known to the analysis session.
type FileID uint32

// NoFileID marks synthetic positions that do not belong to any file.
const NoFileID FileID = 0
