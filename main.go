// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package main

import "github.com/speedrun-tools/seedticket/cmd"

func main() {
	cmd.Execute()
}
