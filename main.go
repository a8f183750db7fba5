package main

import "pdf_watermark/cli"

func main() {
	cli.Execute()
}
