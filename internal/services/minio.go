package services

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
)

// ArchiveInvoice dépose la facture PDF d'une commande dans le bucket
// d'archivage. Best-effort : un échec est loggé, jamais bloquant.
func ArchiveInvoice(ctx context.Context, client *minio.Client, bucket, orderID string, pdf []byte) {
	if client == nil || len(pdf) == 0 {
		return
	}

	objectName := fmt.Sprintf("facture_%s.pdf", orderID)
	_, err := client.PutObject(ctx, bucket, objectName,
		bytes.NewReader(pdf), int64(len(pdf)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		log.Printf("❌ Erreur archivage facture %s: %v", objectName, err)
		return
	}
	log.Printf("🪣 Facture archivée: %s/%s", bucket, objectName)
}
