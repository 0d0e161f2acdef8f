package main

import "errors"

var (
	ErrMultiplePackages = errors.New("gcmeta-gen: directory contained more than one package")
	ErrNoPackage        = errors.New("gcmeta-gen: directory contained no Go package")
)
