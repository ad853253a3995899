package imagestore

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"golang.org/x/sync/errgroup"
)

// UploadFiles stores every multipart file under folder. When one upload fails
// the ones already stored are removed again and an external-service error is returned.
func UploadFiles(ctx context.Context, store Store, log zerolog.Logger, folder string, files []*multipart.FileHeader) (Images, error) {
	out := make(Images, 0, len(files))
	for _, fh := range files {
		data, err := readFile(fh)
		if err != nil {
			DeleteBestEffort(ctx, store, log, out.PublicIDs()...)
			return nil, apperr.Validation("cannot read upload %s", fh.Filename)
		}
		img, err := store.Upload(ctx, folder, data, fh.Header.Get("Content-Type"))
		if err != nil {
			DeleteBestEffort(ctx, store, log, out.PublicIDs()...)
			return nil, apperr.External("image store", err)
		}
		out = append(out, img)
	}
	return out, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// DeleteBestEffort removes the given images concurrently. Failures are logged,
// never returned.
func DeleteBestEffort(ctx context.Context, store Store, log zerolog.Logger, publicIDs ...string) {
	if store == nil || len(publicIDs) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(4)
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		id := id
		g.Go(func() error {
			if err := store.Delete(ctx, id); err != nil {
				log.Warn().Err(err).Str("public_id", id).Msg("image delete failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}
