package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lienzo/lienzo-go/internal/api"
	"github.com/lienzo/lienzo-go/internal/models"
)

func (s *Shell) handleNew(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New(`usage: new <type> "<description>" [--image <file>]... [--tag <name>]... [--warning] [--ai]`)
	}

	data := models.CreatePublication{
		Type:        models.PublicationType(strings.ToUpper(args[0])),
		Description: args[1],
	}

	var paths []string
	rest := args[2:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--warning":
			data.ContentWarning = true
		case "--ai":
			data.MachineGenerated = true
		case "--image", "--tag":
			if i+1 >= len(rest) {
				return fmt.Errorf("%s needs a value", rest[i])
			}
			if rest[i] == "--image" {
				paths = append(paths, rest[i+1])
			} else {
				data.Tags = append(data.Tags, rest[i+1])
			}
			i++
		default:
			return fmt.Errorf("unknown flag: %s", rest[i])
		}
	}

	images, closeAll, err := openImages(paths)
	if err != nil {
		return err
	}
	defer closeAll()

	post, err := s.svc.Publications.Create(ctx, data, images)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Published #%d.\n", post.ID)
	return nil
}

func openImages(paths []string) ([]api.FilePart, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	parts := make([]api.FilePart, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		files = append(files, f)
		parts = append(parts, api.FilePart{Filename: filepath.Base(path), Content: f})
	}
	return parts, closeAll, nil
}

func (s *Shell) handleAvatar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: avatar <file>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := s.svc.Users.UploadAvatar(ctx, api.FilePart{Filename: filepath.Base(args[0]), Content: f}); err != nil {
		return err
	}
	if err := s.svc.Session.SyncProfilePicture(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Avatar updated.")
	return nil
}

func (s *Shell) handleReport(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: report <post-id> <reason> [details]")
	}
	id, err := parseID(args[:1], "usage: report <post-id> <reason> [details]")
	if err != nil {
		return err
	}

	data := models.CreateReport{
		PublicationID: id,
		Reason:        models.ReportReason(strings.ToUpper(args[1])),
	}
	if len(args) > 2 {
		data.Details = strings.Join(args[2:], " ")
	}

	if err := s.svc.Reports.Create(ctx, data); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Report sent. Thank you.")
	return nil
}

func (s *Shell) handlePlaces(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: places <query>")
	}

	places, err := s.svc.Maps.SearchPlaces(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(places) == 0 {
		fmt.Fprintln(s.out, "No places found.")
		return nil
	}
	for _, place := range places {
		fmt.Fprintf(s.out, "%d %s (%s) %.5f,%.5f\n", place.OSMID, place.Name, place.Address, place.Latitude, place.Longitude)
	}
	return nil
}

func (s *Shell) handleAdmin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(`usage: admin reports|resolve|appeals|appeal|tasks|retry|dismiss, see "help admin"`)
	}

	switch args[0] {
	case "reports":
		status := ""
		if len(args) > 1 {
			status = strings.ToUpper(args[1])
		}
		page, err := s.svc.Admin.Reports(ctx, status, api.Pageable{Size: 20})
		if err != nil {
			return err
		}
		for _, report := range page.Content {
			fmt.Fprintf(s.out, "#%d post %d by @%s: %s [%s]\n", report.ID, report.PublicationID, report.Reporter.Username, report.Reason, report.Status)
		}
		return nil

	case "resolve":
		if len(args) < 3 {
			return errors.New("usage: admin resolve <id> <status> [notes]")
		}
		id, err := parseID(args[1:2], "usage: admin resolve <id> <status> [notes]")
		if err != nil {
			return err
		}
		return s.svc.Admin.ResolveReport(ctx, id, strings.ToUpper(args[2]), strings.Join(args[3:], " "))

	case "appeals":
		page, err := s.svc.Admin.Appeals(ctx, api.Pageable{Size: 20})
		if err != nil {
			return err
		}
		for _, appeal := range page.Content {
			fmt.Fprintf(s.out, "#%d post %d by @%s: %s [%s]\n", appeal.ID, appeal.PublicationID, appeal.Appellant.Username, oneLine(appeal.Message), appeal.Status)
		}
		return nil

	case "appeal":
		if len(args) < 3 {
			return errors.New("usage: admin appeal <id> <status> [notes]")
		}
		id, err := parseID(args[1:2], "usage: admin appeal <id> <status> [notes]")
		if err != nil {
			return err
		}
		return s.svc.Admin.ResolveAppeal(ctx, id, strings.ToUpper(args[2]), strings.Join(args[3:], " "))

	case "tasks":
		if len(args) != 2 {
			return errors.New("usage: admin tasks place|ai")
		}
		var page api.Page[models.FailedTask]
		var err error
		switch args[1] {
		case "place":
			page, err = s.svc.Admin.FailedPlaceTasks(ctx, api.Pageable{Size: 20})
		case "ai":
			page, err = s.svc.Admin.FailedAITasks(ctx, api.Pageable{Size: 20})
		default:
			return fmt.Errorf("unknown task queue %q", args[1])
		}
		if err != nil {
			return err
		}
		for _, task := range page.Content {
			fmt.Fprintf(s.out, "#%d post %d %s: %s\n", task.ID, task.PublicationID, task.FailedAt, oneLine(task.Error))
		}
		return nil

	case "retry", "dismiss":
		if len(args) != 3 {
			return fmt.Errorf("usage: admin %s place|ai <id>", args[0])
		}
		id, err := parseID(args[2:3], fmt.Sprintf("usage: admin %s place|ai <id>", args[0]))
		if err != nil {
			return err
		}
		switch {
		case args[1] == "place" && args[0] == "retry":
			return s.svc.Admin.RetryPlaceTask(ctx, id)
		case args[1] == "place":
			return s.svc.Admin.DismissPlaceTask(ctx, id)
		case args[1] == "ai" && args[0] == "retry":
			return s.svc.Admin.RetryAITask(ctx, id)
		case args[1] == "ai":
			return s.svc.Admin.DismissAITask(ctx, id)
		default:
			return fmt.Errorf("unknown task queue %q", args[1])
		}

	default:
		return fmt.Errorf("unknown admin command %q", args[0])
	}
}
