package model

import "time"

// Document is the metadata of a file attached to an activity.  The bytes
// live in the document storage under StoragePath.
type Document struct {
    ID          uint64    // documentos.id
    ActivityID  uint64    // documentos.actividad_id
    UserID      uint64    // documentos.usuario_id
    FileName    string    // documentos.nombre_archivo
    ContentType string    // documentos.tipo_contenido
    SizeBytes   int64     // documentos.tamano_bytes
    StoragePath string    // documentos.ruta
    CreatedAt   time.Time // documentos.created_at
}
