package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/go-zipcore/zipcore/zipsync"
)

func dumpFS(fsys fs.FS) error {
	const tfmt = "2006-01-02T15:04:05"
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		i, err := d.Info()
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", path)
		fmt.Printf("    isdir=%v size=%d mode=%v modtime=%s\n",
			d.IsDir(), i.Size(), i.Mode(), i.ModTime().Format(tfmt))
		return nil
	})
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: zipdump <path.zip>")
		os.Exit(1)
	}

	archive, f, err := zipsync.OpenFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	if c := archive.Comment(); c != "" {
		fmt.Printf("comment: %q\n", c)
	}

	if err := dumpFS(archive.FS()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
